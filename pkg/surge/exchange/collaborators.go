package exchange

import (
	"sort"

	"github.com/yourusername/surge/pkg/surge/http11"
	"github.com/yourusername/surge/pkg/surge/media"
)

// Handler is the application-level unit the route registry hands back: one
// candidate for a given method+path, carrying the media types it consumes
// and produces for negotiation.
type Handler interface {
	Consumes() *media.MediaType
	Produces() *media.MediaType
	Handle(req *http11.Request) (*http11.Response, error)
}

// RouteRegistry is the external collaborator spec.md §6 names: "lookup(method,
// path) -> Iterable<Handler>". The core only consumes it; it doesn't design
// the tree.
type RouteRegistry interface {
	Lookup(method, path string) ([]Handler, error)
}

// ActionChain is the pre/post-handler hook collaborator named in spec.md §6.
type ActionChain interface {
	Before(req *http11.Request) error
	After(req *http11.Request, resp *http11.Response) error
}

// SelectHandler orders candidates by
// (compatibility(consumes, req.Content-Type), compatibility(produces, req.Accept),
//  producedSpecificity, consumedSpecificity) and returns the highest-scoring
// one, first-registered wins ties.
//
// Grounded on spec.md §4.11's selection policy; no teacher precedent (the
// teacher routes by exact path match only, shockwave/pkg/shockwave/server),
// so this is original construction layered directly on the media package's
// scoring primitives.
func SelectHandler(candidates []Handler, reqContentType, reqAccept *media.MediaType) (Handler, bool) {
	if len(candidates) == 0 {
		return nil, false
	}

	type scored struct {
		h                              Handler
		consumeScore, produceScore     media.Score
		producedSpec, consumedSpec     int
		order                          int
	}
	ranked := make([]scored, 0, len(candidates))
	for i, h := range candidates {
		consumeScore := h.Consumes().Compatibility(reqContentType)
		produceScore := h.Produces().Compatibility(reqAccept)
		if consumeScore == media.NOPE || produceScore == media.NOPE {
			continue
		}
		ranked = append(ranked, scored{
			h:            h,
			consumeScore: consumeScore,
			produceScore: produceScore,
			producedSpec: media.Specificity(h.Produces()),
			consumedSpec: media.Specificity(h.Consumes()),
			order:        i,
		})
	}
	if len(ranked) == 0 {
		return nil, false
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.consumeScore != b.consumeScore {
			return a.consumeScore > b.consumeScore
		}
		if a.produceScore != b.produceScore {
			return a.produceScore > b.produceScore
		}
		if a.producedSpec != b.producedSpec {
			return a.producedSpec > b.producedSpec
		}
		if a.consumedSpec != b.consumedSpec {
			return a.consumedSpec > b.consumedSpec
		}
		return a.order < b.order
	})
	return ranked[0].h, true
}
