package handlers

import (
	"net/http"
	"strconv"

	"github.com/wonny/lighthorse/backend/internal/rankchange"
)

// IntensityResponse describes the tint for one rank-change label
type IntensityResponse struct {
	Kind      rankchange.Label `json:"kind"`
	N         int              `json:"n"`
	Intensity float64          `json:"intensity"`
	R         uint8            `json:"r"`
	G         uint8            `json:"g"`
	B         uint8            `json:"b"`
	CSS       string           `json:"css"`
}

// GetIntensity maps a label to its background tint
// GET /api/intensity?label=Up(4)
// GET /api/intensity?kind=down&n=3
func GetIntensity(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var (
		kind rankchange.Label
		n    int
		err  error
	)

	if label := q.Get("label"); label != "" {
		kind, n, err = rankchange.ParseLabel(label)
	} else {
		kind, err = rankchange.ParseKind(q.Get("kind"))
		if err == nil && q.Get("n") != "" {
			n, err = strconv.Atoi(q.Get("n"))
		}
	}
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	c := rankchange.TintFor(kind, n)
	respondJSON(w, http.StatusOK, IntensityResponse{
		Kind:      kind,
		N:         n,
		Intensity: c.Alpha,
		R:         c.R,
		G:         c.G,
		B:         c.B,
		CSS:       c.CSS(),
	})
}
