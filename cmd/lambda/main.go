package main

import (
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/awmpietro/golang-case-classification/internal/bootstrap"
	"github.com/awmpietro/golang-case-classification/internal/config"
	"github.com/awmpietro/golang-case-classification/internal/transport/lambdatransport"
)

func main() {
	cfg := config.Load()
	logger := cfg.Logger(os.Stdout)

	svc, closeObs, err := bootstrap.Service(cfg, logger, nil)
	if err != nil {
		logger.Fatal().Err(err).Msg("bootstrap failed")
	}
	defer closeObs()

	h := lambdatransport.NewHandler(svc)
	lambda.Start(h.Handle)
}
