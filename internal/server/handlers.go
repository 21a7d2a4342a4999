package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ppiankov/treelint/internal/model"
)

// GET /v1/health
func (s *Server) handleHealth(c *gin.Context) {
	respondOK(c, gin.H{"status": "ok"})
}

// GET /v1/duplicates?threshold=0.85
func (s *Server) handleDuplicates(c *gin.Context) {
	threshold, ok := parseFloatQuery(c, "threshold")
	if !ok {
		return
	}

	pairs, err := s.analyzer.FindLikelyDuplicates(threshold)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "analysis_failed", err)
		return
	}
	respondOK(c, gin.H{"count": len(pairs), "duplicates": pairs})
}

// GET /v1/clusters?surname=Smith&threshold=0.60
func (s *Server) handleClusters(c *gin.Context) {
	threshold, ok := parseFloatQuery(c, "threshold")
	if !ok {
		return
	}

	clusters, err := s.analyzer.DetectClusters(c.Query("surname"), threshold)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "analysis_failed", err)
		return
	}
	respondOK(c, gin.H{"count": len(clusters), "clusters": clusters})
}

// GET /v1/persons/:id
func (s *Server) handleProfile(c *gin.Context) {
	personID := c.Param("id")

	profile, err := s.analyzer.Profile(personID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "analysis_failed", err)
		return
	}
	if profile == nil {
		respondError(c, http.StatusNotFound, "person_not_found", fmt.Errorf("person %s not found", personID))
		return
	}
	respondOK(c, profile)
}

// GET /v1/persons/:id/relationships
func (s *Server) handleRelationships(c *gin.Context) {
	personID := c.Param("id")

	issues, err := s.analyzer.CheckPerson(personID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "analysis_failed", err)
		return
	}
	respondOK(c, gin.H{"person_id": personID, "count": len(issues), "issues": issues})
}

// GET /v1/persons/:id/timeline
func (s *Server) handlePersonTimeline(c *gin.Context) {
	personID := c.Param("id")

	issues, err := s.analyzer.ValidatePersonTimeline(personID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "analysis_failed", err)
		return
	}
	respondOK(c, gin.H{"person_id": personID, "count": len(issues), "issues": issues})
}

// GET /v1/persons/:id/coverage
func (s *Server) handleCoverage(c *gin.Context) {
	personID := c.Param("id")

	coverage, err := s.analyzer.AnalyzeCoverage(personID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "analysis_failed", err)
		return
	}
	if coverage == nil {
		respondError(c, http.StatusNotFound, "person_not_found", fmt.Errorf("person %s not found", personID))
		return
	}
	respondOK(c, coverage)
}

// GET /v1/timeline?min_severity=warning
func (s *Server) handleTimeline(c *gin.Context) {
	minSeverity, err := model.ParseSeverity(c.Query("min_severity"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid_min_severity", err)
		return
	}

	issues, err := s.analyzer.ValidateAllTimelines(minSeverity)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "analysis_failed", err)
		return
	}
	respondOK(c, gin.H{"min_severity": minSeverity, "count": len(issues), "issues": issues})
}

// GET /v1/research?root=KWRT-001&generations=4
func (s *Server) handleResearch(c *gin.Context) {
	rootID := c.Query("root")
	if rootID == "" {
		respondError(c, http.StatusBadRequest, "missing_root", errors.New("root query parameter is required"))
		return
	}
	generations, ok := parseIntQuery(c, "generations")
	if !ok {
		return
	}

	leads, err := s.analyzer.ResearchLeads(rootID, generations)
	if err != nil {
		if isNotFound(err) {
			respondError(c, http.StatusNotFound, "root_not_found", err)
			return
		}
		respondError(c, http.StatusInternalServerError, "analysis_failed", err)
		return
	}
	respondOK(c, leads)
}

// GET /v1/compare?a=KWRT-001&b=KWRT-002
func (s *Server) handleCompare(c *gin.Context) {
	id1, id2 := c.Query("a"), c.Query("b")
	if id1 == "" || id2 == "" {
		respondError(c, http.StatusBadRequest, "missing_person_ids", errors.New("a and b query parameters are required"))
		return
	}

	comparison, err := s.analyzer.ComparePersons(id1, id2)
	if err != nil {
		if isNotFound(err) {
			respondError(c, http.StatusNotFound, "person_not_found", err)
			return
		}
		respondError(c, http.StatusInternalServerError, "analysis_failed", err)
		return
	}
	respondOK(c, comparison)
}

type auditRequest struct {
	RootPersonID string `json:"root_person_id" binding:"required"`
	Generations  int    `json:"generations"`
}

// POST /v1/audit
func (s *Server) handleAudit(c *gin.Context) {
	var req auditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	report, err := s.analyzer.RunAudit(c.Request.Context(), req.RootPersonID, req.Generations)
	if err != nil {
		if isNotFound(err) {
			respondError(c, http.StatusNotFound, "root_not_found", err)
			return
		}
		respondError(c, http.StatusInternalServerError, "audit_failed", err)
		return
	}
	respondOK(c, report)
}

// GET /v1/tree/:id/validate?max_persons=1000
func (s *Server) handleValidateTree(c *gin.Context) {
	rootID := c.Param("id")
	maxPersons, ok := parseIntQuery(c, "max_persons")
	if !ok {
		return
	}

	result, err := s.analyzer.ValidateTree(rootID, maxPersons)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "analysis_failed", err)
		return
	}
	respondOK(c, result)
}

func parseFloatQuery(c *gin.Context, name string) (float64, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid_"+name, fmt.Errorf("%s must be a number", name))
		return 0, false
	}
	return val, true
}

func parseIntQuery(c *gin.Context, name string) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid_"+name, fmt.Errorf("%s must be an integer", name))
		return 0, false
	}
	return val, true
}

func isNotFound(err error) bool {
	return err != nil && strings.Contains(err.Error(), "not found")
}
