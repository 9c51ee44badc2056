package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/shortlist-ai/shortlist/pkg/llm"
	"github.com/shortlist-ai/shortlist/pkg/pipeline"
	"github.com/shortlist-ai/shortlist/pkg/store"
	"github.com/shortlist-ai/shortlist/pkg/tasks"
)

// handleAnalyze runs the JD analysis flow.
func (s *Server) handleAnalyze(c *gin.Context) {
	var req pipeline.AnalyzeRequest
	if !s.bind(c, &req) {
		return
	}
	record, err := s.pipeline.AnalyzeJD(c.Request.Context(), req)
	s.respond(c, store.KindAnalysis, record, err)
}

// handleScorecard runs the repository scoring flow.
func (s *Server) handleScorecard(c *gin.Context) {
	var req pipeline.ScorecardRequest
	if !s.bind(c, &req) {
		return
	}
	record, err := s.pipeline.AnalyzeRepo(c.Request.Context(), req)
	s.respond(c, store.KindScorecard, record, err)
}

// handleScaffold runs the scaffold generation flow.
func (s *Server) handleScaffold(c *gin.Context) {
	var req pipeline.ScaffoldRequest
	if !s.bind(c, &req) {
		return
	}
	record, err := s.pipeline.GenerateScaffold(c.Request.Context(), req)
	s.respond(c, store.KindScaffold, record, err)
}

// handlePortfolio runs the portfolio optimization flow.
func (s *Server) handlePortfolio(c *gin.Context) {
	var req pipeline.PortfolioRequest
	if !s.bind(c, &req) {
		return
	}
	record, err := s.pipeline.OptimizePortfolio(c.Request.Context(), req)
	s.respond(c, store.KindPortfolio, record, err)
}

// handleFitness runs the resume fitness evaluation flow.
func (s *Server) handleFitness(c *gin.Context) {
	var req pipeline.FitnessRequest
	if !s.bind(c, &req) {
		return
	}
	record, err := s.pipeline.ScoreFitness(c.Request.Context(), req)
	s.respond(c, store.KindFitness, record, err)
}

// handleGetResult returns one stored record.
func (s *Server) handleGetResult(c *gin.Context) {
	record, err := s.pipeline.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.notFoundOrError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// handleListResults returns stored records, optionally filtered by kind.
func (s *Server) handleListResults(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	records, err := s.pipeline.List(c.Request.Context(), c.Query("kind"), limit)
	if err != nil {
		s.serverError(c, err)
		return
	}
	if records == nil {
		records = []store.Record{}
	}
	c.JSON(http.StatusOK, gin.H{"results": records, "count": len(records)})
}

// handleDeleteResult removes one stored record.
func (s *Server) handleDeleteResult(c *gin.Context) {
	err := s.pipeline.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.notFoundOrError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// handleCompanyTypes lists the supported company archetypes and their rules.
func (s *Server) handleCompanyTypes(c *gin.Context) {
	types := tasks.CompanyTypes()
	modifiers := make([]map[string]any, 0, len(types))
	for _, name := range types {
		modifiers = append(modifiers, tasks.LookupCompanyModifier(name).Map())
	}
	c.JSON(http.StatusOK, gin.H{"company_types": modifiers})
}

// bind decodes and validates a JSON request body.
func (s *Server) bind(c *gin.Context, req any) (ok bool) {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	ok = true
	return ok
}

// respond maps a pipeline outcome to an HTTP response. Provider outages map
// to 502; everything else that errors is a 500.
func (s *Server) respond(c *gin.Context, kind string, record store.Record, err error) {
	s.metrics.recordRun(kind, err != nil)
	if err != nil {
		s.logger.Error("pipeline run failed",
			zap.String("kind", kind),
			zap.Error(err))
		if llm.IsTransport(err) {
			c.JSON(http.StatusBadGateway, gin.H{"error": "generation provider unavailable"})
			return
		}
		s.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// notFoundOrError maps store lookup failures.
func (s *Server) notFoundOrError(c *gin.Context, err error) {
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "result not found"})
		return
	}
	s.serverError(c, err)
}

// serverError hides internal detail from the client.
func (s *Server) serverError(c *gin.Context, err error) {
	s.logger.Error("request failed", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}
