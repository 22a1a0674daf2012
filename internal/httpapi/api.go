package httpapi

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/yuqie6/StudyMirror/internal/bootstrap"
	"github.com/yuqie6/StudyMirror/internal/service"
)

// UserIDHeader 身份层注入的用户 ID
const UserIDHeader = "X-User-ID"

type apiServer struct {
	core      *bootstrap.Core
	startTime time.Time
}

func newAPI(core *bootstrap.Core) *apiServer {
	return &apiServer{core: core, startTime: time.Now()}
}

func (a *apiServer) registerJSONRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/history", instrument("history", a.withUser(a.handleHistory)))
	mux.HandleFunc("GET /api/stats", instrument("stats", a.withUser(a.handleStats)))
	mux.HandleFunc("GET /api/insights", instrument("insights", a.withUser(a.handleInsights)))
	mux.HandleFunc("GET /api/suggestion", instrument("suggestion", a.withUser(a.handleSuggestion)))
	mux.HandleFunc("GET /api/compare", instrument("compare", a.withUser(a.handleCompare)))
	mux.HandleFunc("GET /api/subjects", instrument("subjects", a.withUser(a.handleSubjects)))
}

type userHandler func(w http.ResponseWriter, r *http.Request, userID int64)

// withUser 解析身份层传入的用户 ID
func (a *apiServer) withUser(next userHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := parseInt64Param(r.Header.Get(UserIDHeader))
		if err != nil || userID <= 0 {
			writeError(w, http.StatusUnauthorized, "缺少或非法的用户身份")
			return
		}
		next(w, r, userID)
	}
}

func (a *apiServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":         true,
		"name":       a.core.Cfg.App.Name,
		"version":    a.core.Cfg.App.Version,
		"safe_mode":  a.core.DB.SafeMode,
		"started_at": a.startTime.Format(time.RFC3339),
	})
}

func (a *apiServer) handleHistory(w http.ResponseWriter, r *http.Request, userID int64) {
	q := r.URL.Query()
	period, err := parsePeriod(q.Get("start_date"), q.Get("end_date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	limit := service.DefaultHistoryLimit
	if raw := strings.TrimSpace(q.Get("limit")); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > service.MaxHistoryLimit {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("limit 必须在 1-%d 之间", service.MaxHistoryLimit))
			return
		}
	}

	records, err := a.core.Services.History.GetUnifiedHistory(r.Context(), service.HistoryQuery{
		UserID:    userID,
		StartDate: period.StartDate,
		EndDate:   period.EndDate,
		Limit:     limit,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"history": records, "count": len(records)})
}

func (a *apiServer) handleStats(w http.ResponseWriter, r *http.Request, userID int64) {
	q := r.URL.Query()
	period, err := parsePeriod(q.Get("start_date"), q.Get("end_date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	stats, err := a.core.Services.Stats.GetUnifiedStats(r.Context(), userID, period)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (a *apiServer) handleInsights(w http.ResponseWriter, r *http.Request, userID int64) {
	insights, err := a.core.Services.Insights.GetStudyInsights(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, insights)
}

func (a *apiServer) handleSuggestion(w http.ResponseWriter, r *http.Request, userID int64) {
	var subjectID *int64
	if raw := strings.TrimSpace(r.URL.Query().Get("subject_area_id")); raw != "" {
		id, err := parseInt64Param(raw)
		if err != nil || id <= 0 {
			writeError(w, http.StatusBadRequest, "subject_area_id 非法")
			return
		}
		subject, err := a.core.Repos.Subjects.GetSubjectArea(r.Context(), userID, id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		if subject == nil {
			writeError(w, http.StatusNotFound, "科目不存在")
			return
		}
		subjectID = &id
	}

	suggestion, err := a.core.Services.Suggestions.SuggestStudyMethod(r.Context(), userID, subjectID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, suggestion)
}

// handleSubjects 列出用户科目，供 /api/suggestion 的 subject_area_id 选择
func (a *apiServer) handleSubjects(w http.ResponseWriter, r *http.Request, userID int64) {
	areas, err := a.core.Repos.Subjects.ListSubjectAreas(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	type subjectView struct {
		ID           int64  `json:"id"`
		Name         string `json:"name"`
		ExamTypeName string `json:"exam_type_name"`
	}
	out := make([]subjectView, 0, len(areas))
	for _, sa := range areas {
		out = append(out, subjectView{ID: sa.ID, Name: sa.Name, ExamTypeName: sa.ExamTypeName()})
	}
	writeJSON(w, http.StatusOK, map[string]any{"subjects": out, "count": len(out)})
}

func (a *apiServer) handleCompare(w http.ResponseWriter, r *http.Request, userID int64) {
	q := r.URL.Query()
	keys := []string{"period1_start", "period1_end", "period2_start", "period2_end"}
	for _, k := range keys {
		if strings.TrimSpace(q.Get(k)) == "" {
			writeError(w, http.StatusBadRequest, "缺少参数 "+k)
			return
		}
	}
	p1, err := parsePeriod(q.Get("period1_start"), q.Get("period1_end"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	p2, err := parsePeriod(q.Get("period2_start"), q.Get("period2_end"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	comparison, err := a.core.Services.Comparison.Compare(r.Context(), userID, p1, p2)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, comparison)
}

// parsePeriod 校验日期格式与先后顺序
func parsePeriod(start, end string) (service.Period, error) {
	p := service.Period{StartDate: strings.TrimSpace(start), EndDate: strings.TrimSpace(end)}
	var st, et time.Time
	var err error
	if p.StartDate != "" {
		if st, err = time.Parse("2006-01-02", p.StartDate); err != nil {
			return p, fmt.Errorf("start_date 格式应为 YYYY-MM-DD")
		}
	}
	if p.EndDate != "" {
		if et, err = time.Parse("2006-01-02", p.EndDate); err != nil {
			return p, fmt.Errorf("end_date 格式应为 YYYY-MM-DD")
		}
	}
	if !st.IsZero() && !et.IsZero() && st.After(et) {
		return p, fmt.Errorf("start_date 不能晚于 end_date")
	}
	return p, nil
}

func writeServiceError(w http.ResponseWriter, err error) {
	if errors.Is(err, service.ErrInvalidArgument) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	slog.Error("分析请求失败", "error", err)
	writeError(w, http.StatusInternalServerError, "内部错误")
}

func parseInt64Param(value string) (int64, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return 0, fmt.Errorf("参数为空")
	}
	return strconv.ParseInt(v, 10, 64)
}
