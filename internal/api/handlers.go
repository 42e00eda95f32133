package api

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/JakeFAU/tzverify/internal/codec"
	"github.com/JakeFAU/tzverify/internal/display"
	"github.com/JakeFAU/tzverify/internal/metrics"
	"github.com/JakeFAU/tzverify/internal/tz"
	"github.com/JakeFAU/tzverify/internal/verifier"
)

type parseRequest struct {
	Text string `json:"text"`
	Zone string `json:"zone,omitempty"`
}

type timestampResponse struct {
	Shape  string `json:"shape,omitempty"`
	Epoch  int64  `json:"epoch"`
	Zone   string `json:"zone"`
	Simple string `json:"simple"`
	Offset string `json:"offset"`
}

func newTimestampResponse(shape tz.Shape, ts tz.Timestamp) timestampResponse {
	return timestampResponse{
		Shape:  shape.String(),
		Epoch:  ts.Epoch(),
		Zone:   ts.Zone().Name(),
		Simple: ts.Format(tz.SimpleLayout),
		Offset: ts.Format(tz.OffsetLayout),
	}
}

type formatRequest struct {
	Epoch    *int64 `json:"epoch"`
	Zone     string `json:"zone,omitempty"`
	Encoding string `json:"encoding,omitempty"`
}

type convertRequest struct {
	Text string `json:"text"`
	Zone string `json:"zone,omitempty"`
	To   string `json:"to"`
}

type displayRequest struct {
	Epoch   *int64 `json:"epoch"`
	Zone    string `json:"zone"`
	Pattern string `json:"pattern"`
}

type textResponse struct {
	Text string `json:"text"`
	Zone string `json:"zone"`
}

type ambientPayload struct {
	Zone string `json:"zone"`
}

type runRequest struct {
	Scenarios []string `json:"scenarios,omitempty"`
}

type scenarioResponse struct {
	Name        string `json:"name"`
	Rule        string `json:"rule"`
	Description string `json:"description"`
}

// construct parses text with an optional explicit zone and records the shape.
func (s *Server) construct(text, zone string) (tz.Shape, tz.Timestamp, error) {
	shape, err := tz.Classify(text)
	if err != nil {
		metrics.ObserveParse("invalid", "error")
		return shape, tz.Timestamp{}, err
	}
	var ts tz.Timestamp
	if zone == "" {
		ts, err = s.env().Parse(text)
	} else {
		ts, err = s.env().ParseInName(text, zone)
	}
	if err != nil {
		metrics.ObserveParse(shape.String(), "error")
		return shape, tz.Timestamp{}, err
	}
	metrics.ObserveParse(shape.String(), "ok")
	return shape, ts, nil
}

func (s *Server) parse(w http.ResponseWriter, r *http.Request) {
	var req parseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	shape, ts, err := s.construct(req.Text, req.Zone)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newTimestampResponse(shape, ts))
}

func (s *Server) format(w http.ResponseWriter, r *http.Request) {
	var req formatRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Epoch == nil {
		writeError(w, http.StatusBadRequest, "epoch required")
		return
	}
	enc := codec.EncodingSimple
	if req.Encoding != "" {
		parsed, err := codec.ParseEncoding(req.Encoding)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		enc = parsed
	}
	zone := s.ambient.DefaultZone()
	if req.Zone != "" {
		z, err := tz.LoadZone(req.Zone)
		if err != nil {
			s.writeDomainError(w, r, err)
			return
		}
		zone = z
	}
	text, err := codec.Encode(tz.Unix(*req.Epoch).In(zone), enc)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, textResponse{Text: text, Zone: zone.Name()})
}

func (s *Server) convert(w http.ResponseWriter, r *http.Request) {
	var req convertRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.To) == "" {
		writeError(w, http.StatusBadRequest, "to required")
		return
	}
	target, err := tz.LoadZone(req.To)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	shape, ts, err := s.construct(req.Text, req.Zone)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newTimestampResponse(shape, ts.In(target)))
}

func (s *Server) display(w http.ResponseWriter, r *http.Request) {
	var req displayRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Epoch == nil || req.Zone == "" || req.Pattern == "" {
		writeError(w, http.StatusBadRequest, "epoch, zone and pattern required")
		return
	}
	text, err := display.RenderName(tz.Unix(*req.Epoch), req.Zone, req.Pattern)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, textResponse{Text: text, Zone: req.Zone})
}

func (s *Server) getAmbient(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, ambientPayload{Zone: s.ambient.DefaultZone().Name()})
}

func (s *Server) putAmbient(w http.ResponseWriter, r *http.Request) {
	var req ambientPayload
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	previous := s.ambient.DefaultZone().Name()
	if err := s.ambient.SetName(req.Zone); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	current := s.ambient.DefaultZone().Name()
	s.logger.Info("ambient zone changed",
		zap.String("request_id", requestID(r.Context())),
		zap.String("from", previous),
		zap.String("to", current),
	)
	writeJSON(w, http.StatusOK, ambientPayload{Zone: current})
}

func (s *Server) listScenarios(w http.ResponseWriter, _ *http.Request) {
	out := make([]scenarioResponse, 0, len(s.catalog))
	for _, sc := range s.catalog {
		out = append(out, scenarioResponse{Name: sc.Name, Rule: string(sc.Rule), Description: sc.Description})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) startRun(w http.ResponseWriter, r *http.Request) {
	if s.runner == nil {
		writeError(w, http.StatusServiceUnavailable, "runner not configured")
		return
	}
	var req runRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	scenarios, err := verifier.Select(s.catalog, req.Scenarios...)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	report, err := s.runner.Run(r.Context(), scenarios)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
