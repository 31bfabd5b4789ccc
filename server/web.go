package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"

	"github.com/janelia-flyem/voxview/viewer"
	"github.com/janelia-flyem/voxview/voxview"
)

func (s *Service) newMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/", logHttpPanics(s.apiHandler))
	mux.HandleFunc("/", logHttpPanics(mainHandler))
	return mux
}

// logHttpPanics keeps a panicking handler from killing the server and logs
// the stack for diagnosis.
func logHttpPanics(handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if e := recover(); e != nil {
				voxview.Criticalf("Panic handling %s %s: %v\n%s\n",
					r.Method, r.URL.Path, e, debug.Stack())
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
		}()
		handler(w, r)
	}
}

// Handler for the console page.
func mainHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-type", "text/html")
	fmt.Fprint(w, consolePage)
}

// Handler for API commands through HTTP.  Commands are the final path
// elements under /api/, e.g. /api/slice/xy or /api/axis/1/index.
func (s *Service) apiHandler(w http.ResponseWriter, r *http.Request) {
	const lenPath = len("/api/")
	parts := strings.Split(strings.Trim(r.URL.Path[lenPath:], "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		http.Error(w, "incomplete API request", http.StatusBadRequest)
		return
	}
	switch parts[0] {
	case "info":
		s.infoHandler(w, r)
	case "slice":
		s.sliceHandler(w, r, parts)
	case "axis":
		s.axisHandler(w, r, parts)
	case "group":
		s.groupHandler(w, r)
	case "refresh":
		s.refreshHandler(w, r)
	default:
		http.Error(w, fmt.Sprintf("unknown API command %q", parts[0]), http.StatusBadRequest)
	}
}

type infoResponse struct {
	viewer.Status
	Groups []string `json:"groups"`
}

func (s *Service) infoHandler(w http.ResponseWriter, r *http.Request) {
	info := infoResponse{
		Status: s.viewer.Status(),
		Groups: s.Groups(),
	}
	w.Header().Set("Content-type", "application/json")
	if err := json.NewEncoder(w).Encode(info); err != nil {
		voxview.Errorf("Unable to encode info response: %v\n", err)
	}
}

// GET /api/slice/{xy|xz|yz}?format={png|jpg:80} returns the latest rendered
// frame for a plane, PNG by default.  The X-Frame-Seq response header
// carries the frame sequence number so clients can poll without
// re-downloading unchanged frames.
func (s *Service) sliceHandler(w http.ResponseWriter, r *http.Request, parts []string) {
	if len(parts) != 2 {
		http.Error(w, "slice request must be /api/slice/<plane>", http.StatusBadRequest)
		return
	}
	axis, err := voxview.AxisFromString(parts[1])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	formatStr := r.URL.Query().Get("format")
	if formatStr == "" || formatStr == "png" {
		// Fast path: the frame is already PNG-encoded.
		frame, seq := s.frames.Frame(axis)
		if frame == nil {
			http.Error(w, fmt.Sprintf("no frame rendered yet for %s", axis), http.StatusNotFound)
			return
		}
		w.Header().Set("X-Frame-Seq", strconv.FormatUint(seq, 10))
		w.Header().Set("Content-type", "image/png")
		w.Write(frame)
		return
	}
	img, seq := s.frames.Image(axis)
	if img == nil {
		http.Error(w, fmt.Sprintf("no frame rendered yet for %s", axis), http.StatusNotFound)
		return
	}
	w.Header().Set("X-Frame-Seq", strconv.FormatUint(seq, 10))
	if err := voxview.WriteImageHttp(w, img, formatStr); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
	}
}

// POST /api/axis/{0|1|2}/index?value=N moves a slider.
func (s *Service) axisHandler(w http.ResponseWriter, r *http.Request, parts []string) {
	if r.Method != http.MethodPost {
		http.Error(w, "axis mutation requires POST", http.StatusMethodNotAllowed)
		return
	}
	if len(parts) != 3 || parts[2] != "index" {
		http.Error(w, "axis request must be /api/axis/<axis>/index", http.StatusBadRequest)
		return
	}
	axis, err := voxview.AxisFromString(parts[1])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	value, err := strconv.ParseInt(r.URL.Query().Get("value"), 10, 32)
	if err != nil {
		http.Error(w, fmt.Sprintf("bad index value %q", r.URL.Query().Get("value")), http.StatusBadRequest)
		return
	}
	s.viewer.SetIndex(axis, int32(value))
	w.WriteHeader(http.StatusNoContent)
}

// POST /api/refresh re-renders all three views from the coarsest level on
// the next tick, e.g. after a client reconnects.
func (s *Service) refreshHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "refresh requires POST", http.StatusMethodNotAllowed)
		return
	}
	s.viewer.ForceRefresh()
	w.WriteHeader(http.StatusNoContent)
}

// POST /api/group?name=G switches the active volume group.
func (s *Service) groupHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "group switch requires POST", http.StatusMethodNotAllowed)
		return
	}
	group := r.URL.Query().Get("name")
	if group == "" {
		http.Error(w, "group switch requires ?name=", http.StatusBadRequest)
		return
	}
	if err := s.SwitchGroup(group); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
