package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/TFMV/graphpad/analytics"
	"github.com/TFMV/graphpad/graph"
	"github.com/TFMV/graphpad/interaction"
	"github.com/TFMV/graphpad/models"
	"github.com/TFMV/graphpad/render"
)

// PointerRequest is one pointer event from the canvas.
type PointerRequest struct {
	Type string   `json:"type" validate:"required,oneof=press move release click cancel"`
	X    *float64 `json:"x" validate:"required_unless=Type cancel"`
	Y    *float64 `json:"y" validate:"required_unless=Type cancel"`
	Node string   `json:"node,omitempty" validate:"omitempty,max=256"`
}

func (p PointerRequest) position() graph.Position {
	var pos graph.Position
	if p.X != nil {
		pos.X = *p.X
	}
	if p.Y != nil {
		pos.Y = *p.Y
	}
	return pos
}

// PointerResponse reports the machine state after an event.
type PointerResponse struct {
	State   string       `json:"state"`
	Outcome string       `json:"outcome"`
	NodeID  string       `json:"nodeId,omitempty"`
	Edge    *models.Edge `json:"edge,omitempty"`
	Message string       `json:"message,omitempty"`
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// LayoutResponse reports the result of a layout run.
type LayoutResponse struct {
	Stable bool `json:"stable"`
	Steps  int  `json:"steps"`
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	out, err := s.sess.Render(render.NewDefaultOptions("svg"))
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = w.Write(out)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// NeighborsResponse is the reply to GET /api/graph?node=id.
type NeighborsResponse struct {
	Node      models.Node   `json:"node"`
	Neighbors []models.Node `json:"neighbors"`
}

// NodesResponse is the reply to a filtered node query.
type NodesResponse struct {
	Nodes []models.Node `json:"nodes"`
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	view := s.sess.View()
	query := r.URL.Query()

	if id := query.Get("node"); id != "" {
		node, err := view.FindNodeByID(id)
		if err != nil {
			s.writeError(w, statusFor(err), err)
			return
		}
		s.writeJSON(w, http.StatusOK, NeighborsResponse{
			Node:      *node,
			Neighbors: view.FindConnectedNodes(id),
		})
		return
	}

	if raw := query.Get("isolated"); raw != "" {
		isolated, err := strconv.ParseBool(raw)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, errors.New("isolated must be a boolean"))
			return
		}
		if isolated {
			s.writeJSON(w, http.StatusOK, NodesResponse{Nodes: view.FilterNodes(models.Isolated)})
			return
		}
	}

	s.writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	snap := s.sess.Snapshot()
	switch r.URL.Query().Get("format") {
	case "", "json":
		s.writeJSON(w, http.StatusOK, snap)
	case "yaml", "yml":
		out, err := yaml.Marshal(snap)
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, err)
			return
		}
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(out)
	default:
		s.writeError(w, http.StatusBadRequest, errors.New("format must be json or yaml"))
	}
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	renderer, err := render.GetRenderer(format)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	opts := render.NewDefaultOptions(format)
	opts.ShowLabels = r.URL.Query().Get("labels") == "true"
	out, err := s.sess.Render(opts)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", renderer.ContentType())
	_, _ = w.Write(out)
}

func (s *Server) handlePointer(w http.ResponseWriter, r *http.Request) {
	var req PointerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, errors.New("invalid JSON body"))
		return
	}
	if err := validateStruct(req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	pos := req.position()
	resp := PointerResponse{Outcome: interaction.OutcomeNone.String()}

	switch req.Type {
	case "press":
		var err error
		if req.Node != "" {
			err = s.sess.Press(req.Node, pos)
		} else {
			_, err = s.sess.PressAt(pos)
		}
		if err != nil {
			s.writeGestureError(w, err)
			return
		}
	case "move":
		s.sess.Move(pos)
	case "release":
		res := s.sess.Release(pos)
		fillResult(&resp, res)
		if res.Outcome == interaction.OutcomeRejected {
			resp.State = s.sess.State().String()
			s.writeJSON(w, http.StatusConflict, resp)
			return
		}
	case "click":
		res, err := s.sess.Click(pos, req.Node)
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, err)
			return
		}
		fillResult(&resp, res)
	case "cancel":
		s.sess.Cancel()
	}

	resp.State = s.sess.State().String()
	s.writeJSON(w, http.StatusOK, resp)
}

func fillResult(resp *PointerResponse, res interaction.Result) {
	resp.Outcome = res.Outcome.String()
	resp.NodeID = res.NodeID
	if res.Outcome == interaction.OutcomeEdgeCreated {
		resp.Edge = &models.Edge{Source: res.Edge.Source, Target: res.Edge.Target}
	}
	if res.Err != nil {
		resp.Message = userMessage(res.Err)
	}
}

func (s *Server) handleLayoutStep(w http.ResponseWriter, r *http.Request) {
	steps, err := intParam(r, "steps", s.cfg.LayoutSteps)
	if err != nil || steps < 1 {
		s.writeError(w, http.StatusBadRequest, errors.New("steps must be a positive integer"))
		return
	}

	stable, err := s.sess.Tick(r.Context(), steps)
	if err != nil {
		s.writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	s.writeJSON(w, http.StatusOK, LayoutResponse{Stable: stable, Steps: steps})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	buckets, err := intParam(r, "buckets", s.cfg.HistogramBuckets)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, errors.New("buckets must be an integer"))
		return
	}

	sum, err := s.sess.Stats(buckets)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.metrics.StatsQueries.Inc()
	s.writeJSON(w, http.StatusOK, models.NewStats(sum))
}

func (s *Server) handleHistogram(w http.ResponseWriter, r *http.Request) {
	buckets, err := intParam(r, "buckets", s.cfg.HistogramBuckets)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, errors.New("buckets must be an integer"))
		return
	}
	width, err := intParam(r, "width", 40)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, errors.New("width must be an integer"))
		return
	}

	hist, err := s.sess.Histogram(buckets)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.metrics.StatsQueries.Inc()
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write(render.Histogram(hist, width))
}

func intParam(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, graph.ErrSelfLoop),
		errors.Is(err, graph.ErrDuplicateEdge),
		errors.Is(err, interaction.ErrGestureInProgress):
		return http.StatusConflict
	case errors.Is(err, graph.ErrUnknownNode):
		return http.StatusNotFound
	case errors.Is(err, graph.ErrMalformedLoad),
		errors.Is(err, analytics.ErrInvalidBucketCount):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// userMessage is the alert text shown for a rejected gesture.
func userMessage(err error) string {
	switch {
	case errors.Is(err, graph.ErrDuplicateEdge):
		return "This connection already exists!"
	case errors.Is(err, graph.ErrSelfLoop):
		return "Self loops are not allowed!"
	case errors.Is(err, interaction.ErrGestureInProgress):
		return "Finish the current gesture first."
	default:
		return ""
	}
}

func (s *Server) writeGestureError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	s.logger.Debug("pointer event refused", zap.Error(err), zap.Int("status", status))
	s.writeJSON(w, status, ErrorResponse{Error: err.Error(), Message: userMessage(err)})
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.Error(err))
	}
	s.writeJSON(w, status, ErrorResponse{Error: err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("encode response", zap.Error(err))
	}
}
