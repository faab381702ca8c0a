package handlers

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/facilityops/maintenance-service/internal/domain"
	"github.com/facilityops/maintenance-service/internal/repository"
	apperrors "github.com/facilityops/maintenance-service/pkg/util"
)

func parseQuery(t *testing.T, target string) (repository.Filter, error) {
	t.Helper()
	app := fiber.New()
	var (
		filter repository.Filter
		err    error
	)
	app.Get("/q", func(c *fiber.Ctx) error {
		filter, err = parseRequestQuery(c)
		return nil
	})
	if _, testErr := app.Test(httptest.NewRequest("GET", target, nil)); testErr != nil {
		t.Fatalf("app.Test: %v", testErr)
	}
	return filter, err
}

func TestParseRequestQueryRejectsBadTimestamps(t *testing.T) {
	t.Parallel()

	for _, target := range []string{
		"/q?created_from=yesterday",
		"/q?created_to=2026-08-30", // date only, not RFC3339
	} {
		_, err := parseQuery(t, target)
		if !apperrors.IsCode(err, apperrors.CodeValidation) {
			t.Errorf("%s error code = %q, want VALIDATION_FAILED", target, apperrors.CodeOf(err))
		}
	}
}

func TestParseRequestQueryAcceptsValidFilters(t *testing.T) {
	t.Parallel()

	filter, err := parseQuery(t, "/q?status=submitted&priority=high&created_from=2026-08-01T00:00:00Z&page=2&page_size=5")
	if err != nil {
		t.Fatalf("parseRequestQuery: %v", err)
	}
	if filter.Status == nil || *filter.Status != domain.StatusSubmitted {
		t.Errorf("status = %v, want SUBMITTED (upper-cased)", filter.Status)
	}
	if filter.Priority == nil || *filter.Priority != domain.PriorityHigh {
		t.Errorf("priority = %v, want HIGH", filter.Priority)
	}
	want := time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC)
	if filter.CreatedFrom == nil || !filter.CreatedFrom.Equal(want) {
		t.Errorf("created_from = %v, want %v", filter.CreatedFrom, want)
	}
	if filter.CreatedTo != nil {
		t.Errorf("created_to = %v, want nil when absent", filter.CreatedTo)
	}
	if filter.Page != 2 || filter.PageSize != 5 {
		t.Errorf("paging = (%d, %d), want (2, 5)", filter.Page, filter.PageSize)
	}
}
