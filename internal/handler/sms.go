package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/oggyb/sms-gateway/internal/domain/message"
	"github.com/oggyb/sms-gateway/internal/middleware"
	"github.com/oggyb/sms-gateway/internal/request"
	"github.com/oggyb/sms-gateway/internal/response"
	"github.com/oggyb/sms-gateway/internal/service"
)

// SMSHandler wires HTTP endpoints to the admission service (C4).
type SMSHandler struct {
	sms service.SMSService
}

func NewSMSHandler(sms service.SMSService) *SMSHandler {
	return &SMSHandler{sms: sms}
}

// Send godoc
// @Summary     Send an SMS
// @Description Debits one message-unit from the authenticated tenant, admits the message as PENDING, and queues it for dispatch.
// @Tags        sms
// @Accept      json
// @Produce     json
// @Security    ApiKeyAuth
// @Param       request body request.SendSMSRequest true "Message to send"
// @Success     201 {object} response.JSONResponse
// @Failure     401 {object} response.JSONResponse
// @Failure     402 {object} response.JSONResponse
// @Failure     422 {object} response.JSONResponse
// @Router      /sms/send [post]
func (h *SMSHandler) Send(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := middleware.TenantIDFromContext(r.Context())
	if !ok {
		response.RespondError(w, http.StatusUnauthorized, "missing tenant context")
		return
	}

	var req request.SendSMSRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.RespondError(w, http.StatusUnprocessableEntity, "invalid JSON body")
		return
	}
	if req.SMSType == 0 {
		req.SMSType = int(message.KindRegular)
	}
	if err := request.Validate(&req); err != nil {
		response.RespondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	kind := message.Kind(req.SMSType)
	if err := message.Validate(req.PhoneNumber, req.Message, kind); err != nil {
		response.RespondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	msg, err := h.sms.Send(r.Context(), tenantID, req.PhoneNumber, req.Message, kind)
	switch {
	case errors.Is(err, service.ErrInsufficientBalance):
		response.RespondError(w, http.StatusPaymentRequired, "insufficient balance")
		return
	case isValidationError(err):
		response.RespondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	case err != nil:
		response.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	response.RespondJSON(w, http.StatusCreated, response.FromDomainMessage(msg))
}

// List godoc
// @Summary     List messages
// @Description Returns a paginated, filterable page of the authenticated tenant's messages.
// @Tags        sms
// @Produce     json
// @Security    ApiKeyAuth
// @Param       status      query int    false "1=PENDING 2=SENT 3=FAILED"
// @Param       sms_type    query int    false "1=regular 2=express"
// @Param       start_date  query string false "RFC3339"
// @Param       end_date    query string false "RFC3339"
// @Param       page        query int    false "Page number" default(1)
// @Param       page_size   query int    false "Page size, max 100" default(20)
// @Success     200 {object} response.JSONResponse
// @Failure     401 {object} response.JSONResponse
// @Router      /sms [get]
func (h *SMSHandler) List(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := middleware.TenantIDFromContext(r.Context())
	if !ok {
		response.RespondError(w, http.StatusUnauthorized, "missing tenant context")
		return
	}

	q := r.URL.Query()
	filter := message.ListFilter{Page: 1, Limit: 20}

	if v, err := strconv.Atoi(q.Get("page")); err == nil && v > 0 {
		filter.Page = v
	}
	if v, err := strconv.Atoi(q.Get("page_size")); err == nil && v > 0 && v <= 100 {
		filter.Limit = v
	}
	if v, err := strconv.Atoi(q.Get("status")); err == nil {
		s := message.Status(v)
		filter.Status = &s
	}
	if v, err := strconv.Atoi(q.Get("sms_type")); err == nil {
		k := message.Kind(v)
		filter.Kind = &k
	}
	if v, err := time.Parse(time.RFC3339, q.Get("start_date")); err == nil {
		filter.StartDate = &v
	}
	if v, err := time.Parse(time.RFC3339, q.Get("end_date")); err == nil {
		filter.EndDate = &v
	}

	items, total, err := h.sms.List(r.Context(), tenantID, filter)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, response.ListMessagesPayload{
		Items:    response.FromDomainMessages(items),
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.Limit,
	})
}

// Get godoc
// @Summary     Get a message
// @Description Returns a single message owned by the authenticated tenant.
// @Tags        sms
// @Produce     json
// @Security    ApiKeyAuth
// @Param       id path string true "Message id"
// @Success     200 {object} response.JSONResponse
// @Failure     401 {object} response.JSONResponse
// @Failure     403 {object} response.JSONResponse
// @Failure     404 {object} response.JSONResponse
// @Router      /sms/{id} [get]
func (h *SMSHandler) Get(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := middleware.TenantIDFromContext(r.Context())
	if !ok {
		response.RespondError(w, http.StatusUnauthorized, "missing tenant context")
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		response.RespondError(w, http.StatusNotFound, "message not found")
		return
	}

	msg, err := h.sms.Get(r.Context(), tenantID, id)
	if err == nil {
		response.RespondJSON(w, http.StatusOK, response.FromDomainMessage(msg))
		return
	}

	// The tenant-scoped lookup failed: find out whether the message exists
	// at all under a different tenant, to return 403 instead of 404.
	if owner, ownerErr := h.sms.OwnerOf(r.Context(), id); ownerErr == nil && owner != tenantID {
		response.RespondError(w, http.StatusForbidden, "message belongs to a different account")
		return
	}

	response.RespondError(w, http.StatusNotFound, "message not found")
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, message.ErrEmptyPhone),
		errors.Is(err, message.ErrPhoneLength),
		errors.Is(err, message.ErrPhoneCharset),
		errors.Is(err, message.ErrEmptyText),
		errors.Is(err, message.ErrTextTooLong),
		errors.Is(err, message.ErrInvalidKind):
		return true
	default:
		return false
	}
}
