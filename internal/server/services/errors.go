// Package services contains server-side business logic: the session
// lifecycle, request authentication, account management and the channel
// projections.
package services

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/vidtube/internal/common"
	"github.com/dmitrijs2005/vidtube/internal/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/dmitrijs2005/vidtube/internal/server/services")

// domainErrors are passed to callers unchanged; anything else is logged and
// replaced by common.ErrorInternal.
var domainErrors = []error{
	common.ErrorNotFound,
	common.ErrorAlreadyExists,
	common.ErrorValidation,
	common.ErrorUnauthorized,
	common.ErrInvalidCredentials,
}

func isDomainError(err error) bool {
	for _, target := range domainErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func internal(ctx context.Context, log logging.Logger, op string, err error) error {
	if isDomainError(err) {
		return err
	}
	log.Error(ctx, op+" failed", "error", err)
	return common.ErrorInternal
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
