package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/facilityops/maintenance-service/internal/api/dto"
	"github.com/facilityops/maintenance-service/internal/auth"
	"github.com/facilityops/maintenance-service/internal/domain"
	"github.com/facilityops/maintenance-service/internal/repository"
	"github.com/facilityops/maintenance-service/internal/service"
	"github.com/facilityops/maintenance-service/internal/workflow"
	apperrors "github.com/facilityops/maintenance-service/pkg/util"
)

// RequestsHandler manages service request endpoints: CRUD on drafts,
// lifecycle transitions, audit trail, comments, and attachments.
type RequestsHandler struct {
	engine  *workflow.Engine
	service *service.RequestService
}

// NewRequestsHandler constructs handler.
func NewRequestsHandler(engine *workflow.Engine, requestService *service.RequestService) *RequestsHandler {
	return &RequestsHandler{engine: engine, service: requestService}
}

// Create POST /requests.
func (h *RequestsHandler) Create(c *fiber.Ctx) error {
	caller, err := callerFromContext(c)
	if err != nil {
		return err
	}
	var req dto.CreateRequestRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	request, err := h.engine.CreateDraft(c.UserContext(), caller, workflow.CreateInput{
		Title:          req.Title,
		Description:    req.Description,
		SiteID:         req.SiteID,
		BuildingID:     req.BuildingID,
		FloorID:        req.FloorID,
		RoomID:         req.RoomID,
		ProblemTypeID:  req.ProblemTypeID,
		Priority:       req.Priority,
		RequestedForID: req.RequestedForID,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": requestResponse(request)})
}

// List GET /requests.
func (h *RequestsHandler) List(c *fiber.Ctx) error {
	if _, err := callerFromContext(c); err != nil {
		return err
	}
	filter, err := parseRequestQuery(c)
	if err != nil {
		return err
	}
	views, total, err := h.service.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.RequestResponse, 0, len(views))
	for i := range views {
		items = append(items, viewResponse(&views[i]))
	}
	return c.JSON(fiber.Map{"data": dto.RequestListResponse{
		Items:    items,
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}})
}

// Get GET /requests/:id.
func (h *RequestsHandler) Get(c *fiber.Ctx) error {
	if _, err := callerFromContext(c); err != nil {
		return err
	}
	view, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": viewResponse(view)})
}

// Update PATCH /requests/:id.
func (h *RequestsHandler) Update(c *fiber.Ctx) error {
	caller, err := callerFromContext(c)
	if err != nil {
		return err
	}
	var req dto.UpdateRequestRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	request, err := h.engine.UpdateDraft(c.UserContext(), caller, c.Params("id"), workflow.UpdatePatch{
		Title:          req.Title,
		Description:    req.Description,
		SiteID:         req.SiteID,
		BuildingID:     req.BuildingID,
		FloorID:        req.FloorID,
		RoomID:         req.RoomID,
		ProblemTypeID:  req.ProblemTypeID,
		Priority:       req.Priority,
		RequestedForID: req.RequestedForID,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": requestResponse(request)})
}

// Submit POST /requests/:id/submit.
func (h *RequestsHandler) Submit(c *fiber.Ctx) error {
	return h.transition(c, domain.ActionSubmit, nil)
}

// Triage POST /requests/:id/triage.
func (h *RequestsHandler) Triage(c *fiber.Ctx) error {
	return h.transition(c, domain.ActionTriage, nil)
}

// Assign POST /requests/:id/assign.
func (h *RequestsHandler) Assign(c *fiber.Ctx) error {
	var req dto.AssignRequestRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	return h.transition(c, domain.ActionAssign, &workflow.AssignPayload{
		TradeID:      req.TradeID,
		TechnicianID: req.TechnicianID,
	})
}

// Start POST /requests/:id/start.
func (h *RequestsHandler) Start(c *fiber.Ctx) error {
	return h.transition(c, domain.ActionStart, nil)
}

// Complete POST /requests/:id/complete.
func (h *RequestsHandler) Complete(c *fiber.Ctx) error {
	return h.transition(c, domain.ActionComplete, nil)
}

// Close POST /requests/:id/close.
func (h *RequestsHandler) Close(c *fiber.Ctx) error {
	return h.transition(c, domain.ActionClose, nil)
}

// Cancel POST /requests/:id/cancel.
func (h *RequestsHandler) Cancel(c *fiber.Ctx) error {
	return h.transition(c, domain.ActionCancel, nil)
}

func (h *RequestsHandler) transition(c *fiber.Ctx, action domain.Action, payload *workflow.AssignPayload) error {
	caller, err := callerFromContext(c)
	if err != nil {
		return err
	}
	request, err := h.engine.Transition(c.UserContext(), caller, c.Params("id"), action, payload)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": requestResponse(request)})
}

// Audit GET /requests/:id/audit.
func (h *RequestsHandler) Audit(c *fiber.Ctx) error {
	if _, err := callerFromContext(c); err != nil {
		return err
	}
	entries, err := h.engine.ListAudit(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.AuditEntryResponse, 0, len(entries))
	for i := range entries {
		items = append(items, auditResponse(&entries[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// AddComment POST /requests/:id/comments.
func (h *RequestsHandler) AddComment(c *fiber.Ctx) error {
	caller, err := callerFromContext(c)
	if err != nil {
		return err
	}
	var req dto.CreateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	comment, err := h.service.AddComment(c.UserContext(), caller, c.Params("id"), req.Body)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": commentResponse(comment)})
}

// ListComments GET /requests/:id/comments.
func (h *RequestsHandler) ListComments(c *fiber.Ctx) error {
	if _, err := callerFromContext(c); err != nil {
		return err
	}
	comments, err := h.service.ListComments(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.CommentResponse, 0, len(comments))
	for i := range comments {
		items = append(items, commentResponse(&comments[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// AddAttachment POST /requests/:id/attachments.
func (h *RequestsHandler) AddAttachment(c *fiber.Ctx) error {
	caller, err := callerFromContext(c)
	if err != nil {
		return err
	}
	var req dto.CreateAttachmentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	attachment, err := h.service.AddAttachment(c.UserContext(), caller, c.Params("id"), req.FileName, req.FileURL)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": attachmentResponse(attachment)})
}

// ListAttachments GET /requests/:id/attachments.
func (h *RequestsHandler) ListAttachments(c *fiber.Ctx) error {
	if _, err := callerFromContext(c); err != nil {
		return err
	}
	attachments, err := h.service.ListAttachments(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.AttachmentResponse, 0, len(attachments))
	for i := range attachments {
		items = append(items, attachmentResponse(&attachments[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

func callerFromContext(c *fiber.Ctx) (domain.Caller, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return domain.Caller{}, apperrors.NewUnauthorized("user required")
	}
	return principal.Caller(), nil
}

func parseRequestQuery(c *fiber.Ctx) (repository.Filter, error) {
	filter := repository.Filter{}
	if status := c.Query("status"); status != "" {
		s := domain.Status(strings.ToUpper(strings.TrimSpace(status)))
		filter.Status = &s
	}
	if priority := c.Query("priority"); priority != "" {
		p := domain.Priority(strings.ToUpper(strings.TrimSpace(priority)))
		filter.Priority = &p
	}
	if siteID := c.Query("site_id"); siteID != "" {
		filter.SiteID = &siteID
	}
	if buildingID := c.Query("building_id"); buildingID != "" {
		filter.BuildingID = &buildingID
	}
	if number := c.Query("number"); number != "" {
		filter.NumberContains = &number
	}
	if keyword := c.Query("q"); keyword != "" {
		filter.Keyword = &keyword
	}
	from, err := parseTime(c.Query("created_from"), "created_from")
	if err != nil {
		return filter, err
	}
	filter.CreatedFrom = from
	to, err := parseTime(c.Query("created_to"), "created_to")
	if err != nil {
		return filter, err
	}
	filter.CreatedTo = to
	filter.Page = parseInt(c.Query("page"), 1)
	filter.PageSize = parseInt(c.Query("page_size"), 20)
	filter.Normalize()
	return filter, nil
}

func parseTime(val, field string) (*time.Time, error) {
	if val == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid "+field+" timestamp, want RFC3339", map[string]any{field: val})
	}
	return &t, nil
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

// requestResponse renders a freshly written request. Overdue flags are
// computed against now, same as the read path does.
func requestResponse(request *domain.ServiceRequest) dto.RequestResponse {
	responseOverdue, resolveOverdue := workflow.OverdueFlags(request, time.Now())
	return baseResponse(request, responseOverdue, resolveOverdue)
}

func viewResponse(view *service.RequestView) dto.RequestResponse {
	return baseResponse(&view.ServiceRequest, view.IsResponseOverdue, view.IsResolveOverdue)
}

func baseResponse(r *domain.ServiceRequest, responseOverdue, resolveOverdue bool) dto.RequestResponse {
	return dto.RequestResponse{
		ID:                   r.ID,
		Number:               r.Number,
		Title:                r.Title,
		Description:          r.Description,
		SiteID:               r.SiteID,
		BuildingID:           r.BuildingID,
		FloorID:              r.FloorID,
		RoomID:               r.RoomID,
		ProblemTypeID:        r.ProblemTypeID,
		Priority:             r.Priority,
		Status:               r.Status,
		RequestedByID:        r.RequestedByID,
		RequestedForID:       r.RequestedForID,
		AssignedTradeID:      r.AssignedTradeID,
		AssignedTechnicianID: r.AssignedTechnicianID,
		ResponseDueAt:        r.ResponseDueAt,
		ResolveDueAt:         r.ResolveDueAt,
		IsResponseOverdue:    responseOverdue,
		IsResolveOverdue:     resolveOverdue,
		CreatedAt:            r.CreatedAt,
		UpdatedAt:            r.UpdatedAt,
	}
}

func auditResponse(entry *domain.AuditEntry) dto.AuditEntryResponse {
	return dto.AuditEntryResponse{
		ID:         entry.ID,
		RequestID:  entry.RequestID,
		ActorID:    entry.ActorID,
		Action:     entry.Action,
		FromStatus: entry.FromStatus,
		ToStatus:   entry.ToStatus,
		Metadata:   entry.Metadata,
		CreatedAt:  entry.CreatedAt,
	}
}

func commentResponse(comment *domain.Comment) dto.CommentResponse {
	return dto.CommentResponse{
		ID:        comment.ID,
		RequestID: comment.RequestID,
		AuthorID:  comment.AuthorID,
		Body:      comment.Body,
		CreatedAt: comment.CreatedAt,
	}
}

func attachmentResponse(attachment *domain.Attachment) dto.AttachmentResponse {
	return dto.AttachmentResponse{
		ID:           attachment.ID,
		RequestID:    attachment.RequestID,
		UploadedByID: attachment.UploadedByID,
		FileName:     attachment.FileName,
		FileURL:      attachment.FileURL,
		CreatedAt:    attachment.CreatedAt,
	}
}
