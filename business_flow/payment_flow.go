package businessflow

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/openlaunch/open-launch/app/dto"
	"github.com/openlaunch/open-launch/app/services"
	"github.com/openlaunch/open-launch/repository"
	"github.com/openlaunch/open-launch/utils"
)

// PaymentFlow confirms hosted checkouts for paid launches. It never writes:
// the checkout webhook owns the payment_pending to scheduled transition.
type PaymentFlow interface {
	VerifyCheckoutSession(ctx context.Context, req *dto.PaymentVerifyRequest) (*dto.PaymentVerifyResponse, error)
}

type PaymentFlowImpl struct {
	enabled     bool
	provider    services.PaymentProvider
	projectRepo repository.ProjectRepository
}

// NewPaymentFlow creates the flow. A nil provider disables payments.
func NewPaymentFlow(provider services.PaymentProvider, projectRepo repository.ProjectRepository) PaymentFlow {
	return &PaymentFlowImpl{
		enabled:     provider != nil,
		provider:    provider,
		projectRepo: projectRepo,
	}
}

func (pf *PaymentFlowImpl) VerifyCheckoutSession(ctx context.Context, req *dto.PaymentVerifyRequest) (*dto.PaymentVerifyResponse, error) {
	if !pf.enabled {
		return &dto.PaymentVerifyResponse{Status: dto.PaymentVerifyDisabled}, ErrPaymentsDisabled
	}
	if req == nil || strings.TrimSpace(req.SessionID) == "" {
		return nil, ErrSessionIDRequired
	}

	session, err := pf.provider.RetrieveCheckoutSession(ctx, req.SessionID)
	if err != nil {
		if IsCheckoutSessionNotFound(err) {
			return nil, err
		}
		log.Printf("payment provider error for session %s: %v", req.SessionID, err)
		return nil, fmt.Errorf("%w: %v", ErrPaymentProviderFailed, err)
	}

	switch session.PaymentStatus {
	case services.PaymentStatusPaid:
		return pf.completed(ctx, session.ClientReferenceID)
	case services.PaymentStatusUnpaid:
		return &dto.PaymentVerifyResponse{
			Status:  dto.PaymentVerifyPending,
			Message: "Payment is still being processed",
		}, nil
	default:
		return &dto.PaymentVerifyResponse{
			Status:  dto.PaymentVerifyFailed,
			Message: "Payment was not successful",
		}, nil
	}
}

func (pf *PaymentFlowImpl) completed(ctx context.Context, reference string) (*dto.PaymentVerifyResponse, error) {
	if reference == "" {
		return nil, ErrProjectReferenceMissing
	}
	projectUUID, err := uuid.Parse(reference)
	if err != nil {
		return nil, ErrProjectNotFound
	}

	project, err := pf.projectRepo.ByUUID(ctx, projectUUID)
	if err != nil {
		return nil, NewBusinessError("PAYMENT_VERIFY_FAILED", "Failed to load project", err)
	}
	if project == nil {
		return nil, ErrProjectNotFound
	}

	return &dto.PaymentVerifyResponse{
		Status:       dto.PaymentVerifyComplete,
		ProjectID:    utils.ToPtr(project.ID),
		ProjectUUID:  utils.ToPtr(project.UUID.String()),
		ProjectSlug:  utils.ToPtr(project.Slug),
		ProjectName:  utils.ToPtr(project.Name),
		LaunchStatus: utils.ToPtr(project.LaunchStatus.String()),
	}, nil
}
