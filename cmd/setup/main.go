// Command setup prepares a local env file: it creates the file with an empty
// OPENAI_API_KEY entry when missing and makes sure an access key is present.
package main

import (
	"flag"
	stdlog "log"

	config "github.com/anjiri1684/qura/configs"
	"github.com/anjiri1684/qura/logger"
)

func main() {
	envFile := flag.String("env-file", ".env", "path to the env file")
	flag.Parse()

	log, err := logger.New("local")
	if err != nil {
		stdlog.Fatalf("logger: %v", err)
	}
	defer log.Sync()

	created, err := config.EnsureEnvFile(*envFile)
	if err != nil {
		log.Fatal("Could not create env file", "env_file", *envFile, "error", err)
	}
	if created {
		log.Info("Created env file, add your OpenAI key to it", "env_file", *envFile)
	}

	_, generated, err := config.EnsureAPIKey(*envFile)
	if err != nil {
		log.Fatal("Could not ensure access key", "env_file", *envFile, "error", err)
	}
	if generated {
		log.Info("Generated access key", "env_file", *envFile, "variable", config.APIKeyEnv)
	} else {
		log.Info("Access key already configured", "variable", config.APIKeyEnv)
	}
}
