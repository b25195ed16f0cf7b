package handler

import (
	"net/http"
	"strconv"

	"codecrew/internal/domain"
	"codecrew/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// IssueHandler обрабатывает HTTP запросы для работы с issue
type IssueHandler struct {
	repoService   *service.RepoService
	bountyService *service.BountyService
	claimService  *service.ClaimService
	logger        *zap.Logger
}

// NewIssueHandler создаёт новый экземпляр IssueHandler
func NewIssueHandler(
	repoService *service.RepoService,
	bountyService *service.BountyService,
	claimService *service.ClaimService,
	logger *zap.Logger,
) *IssueHandler {
	return &IssueHandler{
		repoService:   repoService,
		bountyService: bountyService,
		claimService:  claimService,
		logger:        logger,
	}
}

// List обрабатывает GET /api/issues с фильтрами через query параметры:
// repositoryId, state, type, hasBounty, limit
func (h *IssueHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := issueFilterFromQuery(r)
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, err.Error(), domain.CodeInvalidInput)
		return
	}

	issues, err := h.repoService.SearchIssues(r.Context(), filter)
	if err != nil {
		handleDomainError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, issues)
}

// Featured обрабатывает GET /api/issues/featured
func (h *IssueHandler) Featured(w http.ResponseWriter, r *http.Request) {
	issues, err := h.repoService.FeaturedIssues(r.Context())
	if err != nil {
		handleDomainError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, issues)
}

// Claim обрабатывает POST /api/issues/{id}/claim
func (h *IssueHandler) Claim(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		writeUnauthorized(w)
		return
	}

	claim, err := h.claimService.ClaimIssue(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		handleDomainError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, claim)
}

// SetBounty обрабатывает POST /api/issues/{id}/set-bounty
func (h *IssueHandler) SetBounty(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		writeUnauthorized(w)
		return
	}

	var req struct {
		Amount int `json:"amount"`
	}

	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "invalid request body", domain.CodeInvalidInput)
		return
	}

	issue, err := h.bountyService.SetBounty(r.Context(), userID, chi.URLParam(r, "id"), req.Amount)
	if err != nil {
		handleDomainError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, issue)
}

// issueFilterFromQuery разбирает query параметры списка issue
func issueFilterFromQuery(r *http.Request) (domain.IssueFilter, error) {
	q := r.URL.Query()
	filter := domain.IssueFilter{RepositoryID: q.Get("repositoryId")}

	if raw := q.Get("state"); raw != "" {
		state := domain.IssueState(raw)
		if state != domain.IssueStateOpen && state != domain.IssueStateClosed {
			return filter, &queryError{param: "state", value: raw}
		}
		filter.State = state
	}

	if raw := q.Get("type"); raw != "" {
		issueType := domain.IssueType(raw)
		if !issueType.IsValid() {
			return filter, &queryError{param: "type", value: raw}
		}
		filter.Type = issueType
	}

	if raw := q.Get("hasBounty"); raw != "" {
		hasBounty, err := strconv.ParseBool(raw)
		if err != nil {
			return filter, &queryError{param: "hasBounty", value: raw}
		}
		filter.HasBounty = &hasBounty
	}

	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return filter, &queryError{param: "limit", value: raw}
		}
		filter.Limit = limit
	}

	return filter, nil
}

type queryError struct {
	param string
	value string
}

func (e *queryError) Error() string {
	return "invalid value " + strconv.Quote(e.value) + " for query parameter " + strconv.Quote(e.param)
}
