package feedback

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/feeds"
	"gorm.io/gorm"

	"github.com/akashgupta/shopkart-backend/pkg/db/models"
	pkgerrors "github.com/akashgupta/shopkart-backend/pkg/errors"
)

// FeedSize is how many approved reviews the RSS feed carries.
const FeedSize = 50

type productFinder interface {
	FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// ServiceParams groups dependencies for the feedback service.
type ServiceParams struct {
	Repo     *Repository
	Products productFinder
	SiteURL  string
}

// Service handles review submission, moderation, and the RSS feed.
type Service interface {
	Submit(ctx context.Context, params SubmitParams) (FeedbackDTO, error)
	Approve(ctx context.Context, ids []uuid.UUID) (ModerationResultDTO, error)
	Reject(ctx context.Context, ids []uuid.UUID) (ModerationResultDTO, error)
	RecentApproved(ctx context.Context, productID uuid.UUID) ([]FeedbackDTO, error)
	Feed(ctx context.Context, productID uuid.UUID) (*feeds.Feed, error)
}

type service struct {
	repo     *Repository
	products productFinder
	siteURL  string
}

// NewService builds a feedback service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "feedback repo is required")
	}
	if params.Products == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product finder is required")
	}
	return &service{
		repo:     params.Repo,
		products: params.Products,
		siteURL:  strings.TrimRight(params.SiteURL, "/"),
	}, nil
}

// Submit records a review. Authenticated submissions are approved
// immediately and upserted per (product, user); anonymous ones land
// unapproved until moderation.
func (s *service) Submit(ctx context.Context, params SubmitParams) (FeedbackDTO, error) {
	if params.Rating < 1 || params.Rating > 5 {
		return FeedbackDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 1 and 5")
	}

	if _, err := s.products.FindProductByID(ctx, params.ProductID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return FeedbackDTO{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "product not found")
		}
		return FeedbackDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	fb := models.Feedback{
		ID:        uuid.New(),
		ProductID: params.ProductID,
		Rating:    params.Rating,
		Message:   strings.TrimSpace(params.Message),
	}

	if params.UserID != nil {
		fb.UserID = params.UserID
		fb.ReviewerName = params.Username
		fb.ReviewerEmail = params.UserEmail
		fb.Approved = true
		if err := s.repo.UpsertAuthenticated(ctx, &fb); err != nil {
			return FeedbackDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save review")
		}
		// the upsert may have kept the original row's id
		saved, err := s.repo.FindByProductAndUser(ctx, params.ProductID, *params.UserID)
		if err != nil {
			return FeedbackDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload review")
		}
		return toFeedbackDTO(*saved), nil
	}

	fb.ReviewerName = strings.TrimSpace(params.ReviewerName)
	fb.ReviewerEmail = strings.TrimSpace(params.ReviewerEmail)
	if fb.ReviewerName == "" || fb.ReviewerEmail == "" {
		return FeedbackDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "reviewer name and email are required for anonymous reviews")
	}
	fb.Approved = false

	if err := s.repo.CreateAnonymous(ctx, &fb); err != nil {
		return FeedbackDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save review")
	}
	return toFeedbackDTO(fb), nil
}

// Approve flips the given reviews to approved. Repeating the call with
// the same ids affects nothing further.
func (s *service) Approve(ctx context.Context, ids []uuid.UUID) (ModerationResultDTO, error) {
	affected, err := s.repo.ApproveByIDs(ctx, ids)
	if err != nil {
		return ModerationResultDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "approve reviews")
	}
	return ModerationResultDTO{Affected: affected}, nil
}

// Reject removes the given reviews. Unknown ids are skipped, so the
// call is idempotent.
func (s *service) Reject(ctx context.Context, ids []uuid.UUID) (ModerationResultDTO, error) {
	affected, err := s.repo.RejectByIDs(ctx, ids)
	if err != nil {
		return ModerationResultDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reject reviews")
	}
	return ModerationResultDTO{Affected: affected}, nil
}

// RecentApproved returns the newest approved reviews for a product.
func (s *service) RecentApproved(ctx context.Context, productID uuid.UUID) ([]FeedbackDTO, error) {
	rows, err := s.repo.ListApproved(ctx, productID, FeedSize)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list approved reviews")
	}
	result := make([]FeedbackDTO, 0, len(rows))
	for _, row := range rows {
		result = append(result, toFeedbackDTO(row))
	}
	return result, nil
}

// Feed builds the RSS feed of the product's 50 most recent approved reviews.
func (s *service) Feed(ctx context.Context, productID uuid.UUID) (*feeds.Feed, error) {
	product, err := s.products.FindProductByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	rows, err := s.repo.ListApproved(ctx, productID, FeedSize)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list approved reviews")
	}

	productLink := fmt.Sprintf("%s/products/%s", s.siteURL, product.Slug)
	feed := &feeds.Feed{
		Title:       fmt.Sprintf("Reviews for %s", product.Name),
		Link:        &feeds.Link{Href: productLink},
		Description: fmt.Sprintf("The latest approved reviews for %s", product.Name),
	}
	if len(rows) > 0 {
		feed.Updated = rows[0].CreatedAt
	}

	for _, row := range rows {
		feed.Items = append(feed.Items, &feeds.Item{
			Id:          row.ID.String(),
			Title:       fmt.Sprintf("%s rated %s %d/5", row.ReviewerName, product.Name, row.Rating),
			Link:        &feeds.Link{Href: productLink},
			Description: row.Message,
			Author:      &feeds.Author{Name: row.ReviewerName},
			Created:     row.CreatedAt,
		})
	}
	return feed, nil
}
