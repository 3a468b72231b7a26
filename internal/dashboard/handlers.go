package dashboard

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/mineral-insights/mineralboard/internal/export"
	"github.com/mineral-insights/mineralboard/internal/health"
	"github.com/mineral-insights/mineralboard/internal/pipeline"
	"github.com/mineral-insights/mineralboard/internal/render"
)

type catalogResponse struct {
	Minerals      []string `json:"minerals"`
	Scenarios     []string `json:"scenarios"`
	RankScenarios []string `json:"rank_scenarios"`
}

type dashboardResponse struct {
	SnapshotID string    `json:"snapshot_id"`
	LoadedAt   time.Time `json:"loaded_at"`
	pipeline.Result
	KPIDisplay render.KPIDisplay `json:"kpi_display"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// runParams reads the selection from the query string. Absent parameters fall
// back to the first mineral, all scenarios, and the first ranking scenario.
func (s *Server) runParams(r *http.Request) pipeline.Params {
	q := r.URL.Query()
	p := pipeline.Params{
		Mineral:      q.Get("mineral"),
		Scenarios:    q["scenario"],
		RankScenario: q.Get("rank_scenario"),
	}

	if p.Mineral == "" {
		if minerals := s.snap.Minerals(); len(minerals) > 0 {
			p.Mineral = minerals[0]
		}
	}
	if len(p.Scenarios) == 0 {
		p.Scenarios = s.snap.Scenarios()
	}
	if p.RankScenario == "" {
		if scenarios := s.snap.RankScenarios(); len(scenarios) > 0 {
			p.RankScenario = scenarios[0]
		}
	}

	return p
}

// run executes one pipeline pass and records its duration.
func (s *Server) run(p pipeline.Params) pipeline.Result {
	start := time.Now()
	result := pipeline.Run(s.snap, p)
	s.metrics.ObserveRun(time.Since(start))
	return result
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":      "ok",
		"snapshot_id": s.snap.ID,
	})
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, catalogResponse{
		Minerals:      s.snap.Minerals(),
		Scenarios:     s.snap.Scenarios(),
		RankScenarios: s.snap.RankScenarios(),
	})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	result := s.run(s.runParams(r))
	writeJSON(w, http.StatusOK, dashboardResponse{
		SnapshotID: s.snap.ID,
		LoadedAt:   s.snap.LoadedAt,
		Result:     result,
		KPIDisplay: render.FormatKPIs(result.KPIs),
	})
}

func (s *Server) handleRanking(w http.ResponseWriter, r *http.Request) {
	scenario := r.URL.Query().Get("scenario")
	if scenario == "" {
		if scenarios := s.snap.RankScenarios(); len(scenarios) > 0 {
			scenario = scenarios[0]
		}
	}

	start := time.Now()
	ranking := pipeline.RankRisk(s.snap.Summary, scenario)
	s.metrics.ObserveRun(time.Since(start))

	writeJSON(w, http.StatusOK, map[string]any{
		"scenario": scenario,
		"ranking":  ranking,
	})
}

func (s *Server) handleDataHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, health.Collect(s.snap))
}

func (s *Server) handleSupplyDemandChart(w http.ResponseWriter, r *http.Request) {
	result := s.run(s.runParams(r))
	s.writeChart(w, func() ([]byte, error) {
		return render.SupplyDemandLines(result.Series, result.Params.Mineral)
	})
}

func (s *Server) handleGapChart(w http.ResponseWriter, r *http.Request) {
	result := s.run(s.runParams(r))
	s.writeChart(w, func() ([]byte, error) {
		return render.GapBars(result.Series, result.Params.Mineral)
	})
}

func (s *Server) handleTechChart(w http.ResponseWriter, r *http.Request) {
	result := s.run(s.runParams(r))
	s.writeChart(w, func() ([]byte, error) {
		return render.TechArea(result.Tech, result.BaseMineral)
	})
}

// writeChart renders one chart to the response. An empty filtered input is
// not an error: the source simply has nothing for this selection, so the
// client gets a 404 with a machine-readable reason.
func (s *Server) writeChart(w http.ResponseWriter, renderFn func() ([]byte, error)) {
	png, err := renderFn()
	if errors.Is(err, render.ErrNoData) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not reported for this selection"})
		return
	}
	if err != nil {
		zap.L().Error("render chart", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "chart rendering failed"})
		return
	}

	w.Header().Set("Content-Type", "image/png")
	if _, err := w.Write(png); err != nil {
		zap.L().Error("write chart response", zap.Error(err))
	}
}

func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	result := s.run(s.runParams(r))
	data, err := export.RankingWorkbook(result)
	if err != nil {
		zap.L().Error("export workbook", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "workbook export failed"})
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="ranking.xlsx"`)
	if _, err := w.Write(data); err != nil {
		zap.L().Error("write workbook response", zap.Error(err))
	}
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	result := s.run(s.runParams(r))
	data, err := export.RankingCSV(result.Ranking)
	if err != nil {
		zap.L().Error("export csv", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "csv export failed"})
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="ranking.csv"`)
	if _, err := w.Write(data); err != nil {
		zap.L().Error("write csv response", zap.Error(err))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("encode response", zap.Error(err))
	}
}
