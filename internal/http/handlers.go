package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"chitieu/internal/analytics"
	"chitieu/internal/budget"
	"chitieu/internal/core"
	applog "chitieu/internal/log"
)

// Response shapes use the camelCase field names the mobile client
// expects.

type categoryDTO struct {
	ID    core.CategoryID `json:"id"`
	Name  string          `json:"name"`
	Color string          `json:"color"`
	Icon  string          `json:"icon"`
}

type categoryStatusDTO struct {
	Category             categoryDTO `json:"category"`
	MonthlyLimit         int64       `json:"monthlyLimit"`
	Spent                int64       `json:"spent"`
	Percentage           float64     `json:"percentage"`
	Remaining            int64       `json:"remaining"`
	IsOverBudget         bool        `json:"isOverBudget"`
	NotificationsEnabled bool        `json:"notificationsEnabled"`
}

type totalsDTO struct {
	TotalBudget    int64 `json:"totalBudget"`
	TotalSpent     int64 `json:"totalSpent"`
	TotalRemaining int64 `json:"totalRemaining"`
}

type warningDTO struct {
	Category categoryDTO `json:"category"`
	Severity string      `json:"severity"`
	Spent    int64       `json:"spent"`
	Limit    int64       `json:"monthlyLimit"`
}

type recommendationDTO struct {
	Category    core.CategoryID `json:"category,omitempty"`
	Label       string          `json:"label"`
	Recommended int64           `json:"recommended"`
	Min         int64           `json:"min"`
	Max         int64           `json:"max"`
}

type dayBucketDTO struct {
	Date         string `json:"date"`
	ExpenseTotal int64  `json:"expenseTotal"`
	IncomeTotal  int64  `json:"incomeTotal"`
	ExpenseCount int    `json:"expenseCount"`
}

type summaryDTO struct {
	TotalExpense    int64   `json:"totalExpense"`
	TotalIncome     int64   `json:"totalIncome"`
	AvgDailyExpense float64 `json:"avgDailyExpense"`
	ExpenseCount    int     `json:"expenseCount"`
	IncomeCount     int     `json:"incomeCount"`
}

func toCategoryDTO(c core.Category) categoryDTO {
	return categoryDTO{ID: c.ID, Name: c.Name, Color: c.Color, Icon: c.Icon}
}

func toStatusDTO(st budget.CategoryStatus) categoryStatusDTO {
	return categoryStatusDTO{
		Category:             toCategoryDTO(st.Category),
		MonthlyLimit:         st.MonthlyLimit,
		Spent:                st.Spent,
		Percentage:           st.Percentage,
		Remaining:            st.Remaining,
		IsOverBudget:         st.IsOverBudget,
		NotificationsEnabled: st.NotificationsEnabled,
	}
}

func toBucketDTOs(buckets []analytics.DayBucket) []dayBucketDTO {
	out := make([]dayBucketDTO, len(buckets))
	for i, b := range buckets {
		out[i] = dayBucketDTO{
			Date:         b.Date,
			ExpenseTotal: b.ExpenseTotal,
			IncomeTotal:  b.IncomeTotal,
			ExpenseCount: b.ExpenseCount,
		}
	}
	return out
}

func toSummaryDTO(s analytics.Summary) summaryDTO {
	return summaryDTO{
		TotalExpense:    s.TotalExpense,
		TotalIncome:     s.TotalIncome,
		AvgDailyExpense: s.AvgDailyExpense,
		ExpenseCount:    s.ExpenseCount,
		IncomeCount:     s.IncomeCount,
	}
}

// handleCategories lists the built-in spending categories.
func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}

	cats := core.Categories()
	out := make([]categoryDTO, len(cats))
	for i, c := range cats {
		out[i] = toCategoryDTO(c)
	}
	NewResponse().JSON(out).Write(w)
}

// handleBudgets returns the live budget status for every category.
func (s *Server) handleBudgets(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}

	statuses := s.svc.Store().CategoryStatus()
	out := make([]categoryStatusDTO, len(statuses))
	for i, st := range statuses {
		out[i] = toStatusDTO(st)
	}
	NewResponse().JSON(out).Write(w)
}

// handleUpdateBudget updates a category's monthly limit and/or its
// notification toggle.
func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodPut); resp != nil {
		resp.Write(w)
		return
	}

	id := core.CategoryID(r.PathValue("category"))
	if _, ok := core.CategoryByID(id); !ok {
		NotFoundError("unknown category: " + string(id)).Write(w)
		return
	}

	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		BadRequestError("invalid request body").Write(w)
		return
	}
	if !parser.Has("monthlyLimit") && !parser.Has("notificationsEnabled") {
		BadRequestError("nothing to update").Write(w)
		return
	}

	ctx := r.Context()
	if parser.Has("monthlyLimit") {
		limit, err := core.ParseAmount(parser.Get("monthlyLimit"))
		if err != nil {
			UnprocessableEntityError("invalid monthly limit").Write(w)
			return
		}
		if err := s.svc.Store().SetMonthlyLimit(ctx, id, limit); err != nil {
			s.writeStoreError(w, r, "update monthly limit", err)
			return
		}
	}
	if parser.Has("notificationsEnabled") {
		enabled := parser.Get("notificationsEnabled") == "true"
		if err := s.svc.Store().SetNotifications(ctx, id, enabled); err != nil {
			s.writeStoreError(w, r, "update notifications", err)
			return
		}
	}

	for _, st := range s.svc.Store().CategoryStatus() {
		if st.Category.ID == id {
			NewResponse().JSON(toStatusDTO(st)).Write(w)
			return
		}
	}
	InternalServerError("category vanished after update").Write(w)
}

// handleTotals returns aggregate budget figures.
func (s *Server) handleTotals(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}

	t := s.svc.Store().Totals()
	NewResponse().JSON(totalsDTO{
		TotalBudget:    t.TotalBudget,
		TotalSpent:     t.TotalSpent,
		TotalRemaining: t.TotalRemaining,
	}).Write(w)
}

// handleWarnings returns only the categories currently in a warning
// state.
func (s *Server) handleWarnings(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}

	out := make([]warningDTO, 0)
	for _, st := range s.svc.Store().CategoryStatus() {
		sev, err := s.svc.Store().Warning(st.Category.ID)
		if err != nil || sev == budget.SeverityNone {
			continue
		}
		out = append(out, warningDTO{
			Category: toCategoryDTO(st.Category),
			Severity: string(sev),
			Spent:    st.Spent,
			Limit:    st.MonthlyLimit,
		})
	}
	NewResponse().JSON(out).Write(w)
}

// handleRecommendations computes income-based limit suggestions.
// With ?apply=true the suggested limits are also written to the store.
func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodPost); resp != nil {
		resp.Write(w)
		return
	}

	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		BadRequestError("invalid request body").Write(w)
		return
	}

	income, err := core.ParseAmount(parser.Get("income"))
	if err != nil {
		UnprocessableEntityError("invalid income").Write(w)
		return
	}

	recs, err := budget.Recommend(income)
	if err != nil {
		UnprocessableEntityError(err.Error()).Write(w)
		return
	}

	applyParam := r.URL.Query().Get("apply")
	apply := applyParam == "1" || strings.EqualFold(applyParam, "true")
	if apply {
		if err := s.svc.Store().ApplyRecommendations(r.Context(), income); err != nil {
			s.writeStoreError(w, r, "apply recommendations", err)
			return
		}
	}

	out := make([]recommendationDTO, len(recs))
	for i, rec := range recs {
		out[i] = recommendationDTO{
			Category:    rec.Category,
			Label:       rec.Label,
			Recommended: rec.Recommended,
			Min:         rec.Min,
			Max:         rec.Max,
		}
	}
	NewResponse().JSON(struct {
		Applied         bool                `json:"applied"`
		Recommendations []recommendationDTO `json:"recommendations"`
	}{Applied: apply, Recommendations: out}).Write(w)
}

// handleRefresh re-reads the transaction source and recomputes this
// month's spending.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodPost); resp != nil {
		resp.Write(w)
		return
	}

	if err := s.svc.RefreshCurrentMonth(r.Context()); err != nil {
		s.logger.ErrorContext(r.Context(), "Refresh failed", applog.FieldError, err)
		InternalServerError("refresh failed").Write(w)
		return
	}
	s.invalidateAnalytics()

	t := s.svc.Store().Totals()
	NewResponse().JSON(totalsDTO{
		TotalBudget:    t.TotalBudget,
		TotalSpent:     t.TotalSpent,
		TotalRemaining: t.TotalRemaining,
	}).Write(w)
}

// handleDaily returns the trailing n-day spending buckets (default 7,
// capped at 90).
func (s *Server) handleDaily(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}

	days := 7
	if v := strings.TrimSpace(r.URL.Query().Get("days")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 90 {
			BadRequestError("days must be between 1 and 90").Write(w)
			return
		}
		days = n
	}

	key := "daily:" + strconv.Itoa(days)
	if buckets, found := s.bucketsCache.Get(key); found {
		NewResponse().JSON(toBucketDTOs(buckets)).Write(w)
		return
	}

	buckets, err := s.svc.LastNDays(r.Context(), days)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Daily buckets failed", applog.FieldError, err)
		InternalServerError("failed to load daily spending").Write(w)
		return
	}
	s.bucketsCache.Set(key, buckets)
	NewResponse().JSON(toBucketDTOs(buckets)).Write(w)
}

// handleWeekly returns the rolling 7-day summary.
func (s *Server) handleWeekly(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}

	if summary, found := s.summaryCache.Get("weekly"); found {
		NewResponse().JSON(toSummaryDTO(summary)).Write(w)
		return
	}

	summary, err := s.svc.WeeklySummary(r.Context())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Weekly summary failed", applog.FieldError, err)
		InternalServerError("failed to load weekly summary").Write(w)
		return
	}
	s.summaryCache.Set("weekly", summary)
	NewResponse().JSON(toSummaryDTO(summary)).Write(w)
}

// handleMonth returns the month-to-date summary, the full calendar and
// the peak spending day (null when the month has no expenses).
func (s *Server) handleMonth(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}

	summary, err := s.svc.MonthToDateSummary(r.Context())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Month summary failed", applog.FieldError, err)
		InternalServerError("failed to load month summary").Write(w)
		return
	}

	calendar, peak, err := s.svc.MonthCalendar(r.Context())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Month calendar failed", applog.FieldError, err)
		InternalServerError("failed to load month calendar").Write(w)
		return
	}

	var peakDTO *dayBucketDTO
	if peak != nil {
		d := dayBucketDTO{
			Date:         peak.Date,
			ExpenseTotal: peak.ExpenseTotal,
			IncomeTotal:  peak.IncomeTotal,
			ExpenseCount: peak.ExpenseCount,
		}
		peakDTO = &d
	}

	NewResponse().JSON(struct {
		Summary  summaryDTO     `json:"summary"`
		Calendar []dayBucketDTO `json:"calendar"`
		PeakDay  *dayBucketDTO  `json:"peakDay"`
	}{
		Summary:  toSummaryDTO(summary),
		Calendar: toBucketDTOs(calendar),
		PeakDay:  peakDTO,
	}).Write(w)
}

// writeStoreError maps store errors onto HTTP statuses.
func (s *Server) writeStoreError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, core.ErrInvalidAmount):
		UnprocessableEntityError(err.Error()).Write(w)
	case errors.Is(err, core.ErrUnknownCategory):
		NotFoundError(err.Error()).Write(w)
	default:
		s.logger.ErrorContext(r.Context(), "Store operation failed",
			applog.FieldOperation, op, applog.FieldError, err)
		InternalServerError("failed to save budget").Write(w)
	}
}
