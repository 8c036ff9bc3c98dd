package handler

import (
	"google.golang.org/grpc/status"

	"github.com/dtroode/tokenkeeper/internal/api/apierror"
)

func handleError(err error) error {
	apiErr := apierror.From(err)
	return status.Error(apiErr.GRPCCode, apiErr.Message)
}
