package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"shipping_schedule/internal/catalog"
	"shipping_schedule/internal/dedup"
	"shipping_schedule/internal/schedule"
	"shipping_schedule/internal/storage"
)

// CatalogStatus summarises the loaded catalog.
type CatalogStatus struct {
	Source     string `json:"source"`
	Identities int    `json:"identities"`
	Aliases    int    `json:"aliases"`
	Regions    int    `json:"regions"`
	Warnings   int    `json:"warnings"`
	Degraded   bool   `json:"degraded"`
}

func (s *Server) catalogStatus() CatalogStatus {
	c := s.res.Catalog()
	return CatalogStatus{
		Source:     c.Source(),
		Identities: c.Len(),
		Aliases:    c.AliasCount(),
		Regions:    c.RegionCount(),
		Warnings:   len(c.Warnings()),
		Degraded:   c.Degraded(),
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	cs := s.catalogStatus()
	if cs.Degraded {
		status = "degraded"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  status,
		"time":    time.Now().UTC().Format(time.RFC3339),
		"catalog": cs,
	})
}

// PortResponse is one catalog entry.
type PortResponse struct {
	catalog.PortIdentity
	Display string `json:"display"`
}

func (s *Server) handleListPorts(w http.ResponseWriter, r *http.Request) {
	c := s.res.Catalog()
	region := strings.TrimSpace(r.URL.Query().Get("region"))
	if region != "" {
		region = c.NormaliseRegion(region)
	}

	ports := make([]PortResponse, 0, c.Len())
	for _, id := range c.Identities() {
		if region != "" && id.Region != region {
			continue
		}
		ports = append(ports, PortResponse{PortIdentity: id, Display: id.Display()})
	}
	writeJSON(w, http.StatusOK, ports)
}

// ResolveResponse is the result of resolving one string.
type ResolveResponse struct {
	Input    string                `json:"input"`
	Resolved bool                  `json:"resolved"`
	Code     string                `json:"code"`
	Display  string                `json:"display"`
	Identity *catalog.PortIdentity `json:"identity,omitempty"`
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if strings.TrimSpace(q) == "" {
		writeError(w, http.StatusBadRequest, "q is required")
		return
	}

	if t := r.URL.Query().Get("trace"); t == "1" || t == "true" {
		writeJSON(w, http.StatusOK, s.res.Trace(q))
		return
	}

	resp := ResolveResponse{Input: q, Code: s.res.Resolve(q), Display: s.res.Standardize(q)}
	if id, ok := s.res.Identify(q); ok {
		resp.Resolved = true
		resp.Identity = &id
	}
	writeJSON(w, http.StatusOK, resp)
}

// PortsRequest is the body of the port batch endpoints.
type PortsRequest struct {
	Ports []string `json:"ports"`
}

// PortsResponse returns ports in request order or sorted order.
type PortsResponse struct {
	Ports []string `json:"ports"`
}

func (s *Server) decodePorts(w http.ResponseWriter, r *http.Request) ([]string, bool) {
	var req PortsRequest
	if !decodeBody(w, r, &req) {
		return nil, false
	}
	if len(req.Ports) > maxBatch {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Maximum %d ports per request", maxBatch))
		return nil, false
	}
	return req.Ports, true
}

func (s *Server) handleStandardize(w http.ResponseWriter, r *http.Request) {
	ports, ok := s.decodePorts(w, r)
	if !ok {
		return
	}
	out := make([]string, len(ports))
	for i, p := range ports {
		out[i] = s.res.Standardize(p)
	}
	writeJSON(w, http.StatusOK, PortsResponse{Ports: out})
}

func (s *Server) handleSortPorts(w http.ResponseWriter, r *http.Request) {
	ports, ok := s.decodePorts(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, PortsResponse{Ports: s.order.SortPorts(ports)})
}

func (s *Server) handleListRegions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.res.Catalog().Regions())
}

// RegionsRequest is the body of POST /regions/sort.
type RegionsRequest struct {
	Regions []string `json:"regions"`
}

func (s *Server) handleSortRegions(w http.ResponseWriter, r *http.Request) {
	var req RegionsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if len(req.Regions) > maxBatch {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Maximum %d regions per request", maxBatch))
		return
	}
	writeJSON(w, http.StatusOK, RegionsRequest{Regions: s.order.SortRegions(req.Regions)})
}

// DedupeRequest is the body of POST /sailings/dedupe.
type DedupeRequest struct {
	Records []schedule.SailingRecord `json:"records"`
}

// DedupeResponse carries the kept records and drop counts.
type DedupeResponse struct {
	Records []schedule.SailingRecord `json:"records"`
	Stats   dedup.Stats              `json:"stats"`
}

func (s *Server) handleDedupe(w http.ResponseWriter, r *http.Request) {
	var req DedupeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if len(req.Records) > maxBatch {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Maximum %d records per request", maxBatch))
		return
	}
	kept, stats := s.dedup.DedupeWithStats(req.Records)
	writeJSON(w, http.StatusOK, DedupeResponse{Records: kept, Stats: stats})
}

func (s *Server) handleUnresolved(w http.ResponseWriter, r *http.Request) {
	if s.report == nil {
		writeError(w, http.StatusNotFound, "Unresolved-port report is not enabled")
		return
	}
	rows, err := s.report.ListUnresolved(queryInt(r, "limit", 100))
	if err != nil {
		s.logger.Error("list unresolved", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if rows == nil {
		rows = []storage.UnresolvedPort{}
	}
	writeJSON(w, http.StatusOK, rows)
}
