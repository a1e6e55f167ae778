package saga

import (
	"context"
	"errors"
	"fmt"

	"fundgate/internal/pkg/logger"
	"fundgate/internal/service/deposit/domain"
	"fundgate/internal/service/deposit/domain/port"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// UploadProofHandler 上传付款凭证。主桶不存在时只重试一次备用桶。
type UploadProofHandler struct {
	NextHandler
}

func (h *UploadProofHandler) Handle(submitCtx *SubmitContext) error {
	ctx, span := submitCtx.Tracer.Start(submitCtx.Ctx, "saga.UploadProof")
	defer span.End()

	proof := submitCtx.Proof
	path := domain.ProofPath(submitCtx.UserID, submitCtx.Now, proof.Filename)
	span.SetAttributes(attribute.String("storage.path", path), attribute.Int("storage.size", len(proof.Data)))

	bucket := submitCtx.Buckets.Primary
	url, err := submitCtx.Storage.Upload(ctx, bucket, path, proof.Data, proof.ContentType)
	if errors.Is(err, port.ErrBucketNotFound) && submitCtx.Buckets.Fallback != "" {
		logger.Ctx(ctx).Warn().Str("bucket", bucket).Str("fallback", submitCtx.Buckets.Fallback).Msg("Proof bucket missing, retrying on fallback bucket")
		span.AddEvent("primary bucket not found, retrying fallback")
		bucket = submitCtx.Buckets.Fallback
		url, err = submitCtx.Storage.Upload(ctx, bucket, path, proof.Data, proof.ContentType)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Proof upload failed")
		return fmt.Errorf("%w: %s", domain.ErrUploadFailed, err.Error())
	}

	submitCtx.ProofBucket, submitCtx.ProofPath, submitCtx.ProofURL = bucket, path, url
	submitCtx.AddCompensation(func(compCtx context.Context) {
		compCtx, compSpan := submitCtx.Tracer.Start(compCtx, "saga.compensation.RemoveProof")
		defer compSpan.End()

		if err := submitCtx.Storage.Remove(compCtx, bucket, path); err != nil {
			compSpan.RecordError(err)
			logger.Ctx(compCtx).Error().Err(err).Str("bucket", bucket).Str("path", path).Msg("Failed to remove orphaned proof")
		}
	})

	span.AddEvent("Proof uploaded")
	return h.executeNext(submitCtx)
}
