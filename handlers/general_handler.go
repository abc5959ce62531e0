package handlers

import (
	"github.com/anjiri1684/qura/utils"
	"github.com/gofiber/fiber/v2"
)

func Index(c *fiber.Ctx) error {
	return c.SendString("Quiz server is running!")
}

func Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func GetMessage(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"message": "Hello from Qura!"})
}

func GetRandom(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"msg": utils.RandomCode(utils.RandomCodeLength)})
}
