package router

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/unityctl/bridge/core/handler"
)

// methodTyp is a bitmask identifying one or more HTTP methods.
type methodTyp uint16

const (
	mCONNECT methodTyp = 1 << iota
	mDELETE
	mGET
	mHEAD
	mOPTIONS
	mPATCH
	mPOST
	mPUT
	mTRACE
	mSTUB
)

// mALL matches every standard HTTP method (used by Handle and mount stubs).
const mALL = mCONNECT | mDELETE | mGET | mHEAD | mOPTIONS | mPATCH | mPOST | mPUT | mTRACE

var methodMap = map[string]methodTyp{
	http.MethodConnect: mCONNECT,
	http.MethodDelete:  mDELETE,
	http.MethodGet:     mGET,
	http.MethodHead:    mHEAD,
	http.MethodOptions: mOPTIONS,
	http.MethodPatch:   mPATCH,
	http.MethodPost:    mPOST,
	http.MethodPut:     mPUT,
	http.MethodTrace:   mTRACE,
}

var reverseMethodMap = map[methodTyp]string{
	mCONNECT: http.MethodConnect,
	mDELETE:  http.MethodDelete,
	mGET:     http.MethodGet,
	mHEAD:    http.MethodHead,
	mOPTIONS: http.MethodOptions,
	mPATCH:   http.MethodPatch,
	mPOST:    http.MethodPost,
	mPUT:     http.MethodPut,
	mTRACE:   http.MethodTrace,
}

// allBits lists every concrete (non-composite) method bit, including mSTUB.
var allBits = []methodTyp{mCONNECT, mDELETE, mGET, mHEAD, mOPTIONS, mPATCH, mPOST, mPUT, mTRACE, mSTUB}

// Params holds matched path parameters in declaration order.
type Params struct {
	Keys   []string
	Values []string
}

type endpoint[C handler.Context] struct {
	handler handler.HandlerFunc[C]
	pattern string
}

type segKind int

const (
	segStatic segKind = iota
	segRegexp
	segParam
	segWildcard
)

type segment struct {
	kind segKind
	lit  string // literal text, segStatic
	name string // param name, segRegexp/segParam/segWildcard
	re   *regexp.Regexp
}

// node is both the routing tree's root (via its children slice) and a
// single registered route pattern (via its own pattern/endpoints/subroutes).
// Mount() returns the child node for a pattern so it can attach a sub-router.
//
// Patterns are matched by priority (static > regexp > param > wildcard) at
// each path position, evaluated left to right, across the flat children
// list — there is no per-segment trie descent.
type node[C handler.Context] struct {
	pattern   string
	segments  []segment
	endpoints map[methodTyp]*endpoint[C]
	subroutes Router[C]

	children []*node[C]
}

func parsePattern(pattern string) []segment {
	trimmed := strings.Trim(pattern, "/")
	if trimmed == "" {
		return nil
	}

	parts := strings.Split(trimmed, "/")
	names := make(map[string]bool)
	segs := make([]segment, 0, len(parts))

	for i, part := range parts {
		switch {
		case part == "*":
			if i != len(parts)-1 {
				panic(fmt.Errorf("%w: '%s'", ErrWildcardPosition, pattern))
			}
			segs = append(segs, segment{kind: segWildcard, name: "*"})

		case strings.HasPrefix(part, "{") && strings.HasSuffix(part, "}"):
			inner := part[1 : len(part)-1]
			if inner == "" {
				panic(fmt.Errorf("%w: '%s'", ErrParamDelimiter, pattern))
			}

			name, reSrc, hasRegexp := strings.Cut(inner, ":")
			if names[name] {
				panic(fmt.Errorf("%w: '%s' in '%s'", ErrDuplicateParam, name, pattern))
			}
			names[name] = true

			if hasRegexp {
				re, err := regexp.Compile("^(?:" + reSrc + ")$")
				if err != nil {
					panic(fmt.Errorf("%w: '%s'", ErrInvalidRegexp, pattern))
				}
				segs = append(segs, segment{kind: segRegexp, name: name, re: re})
			} else {
				segs = append(segs, segment{kind: segParam, name: name})
			}

		default:
			segs = append(segs, segment{kind: segStatic, lit: part})
		}
	}

	return segs
}

func splitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

// expandBits returns every concrete bit set in method.
func expandBits(method methodTyp) []methodTyp {
	bits := make([]methodTyp, 0, len(allBits))
	for _, b := range allBits {
		if method&b != 0 {
			bits = append(bits, b)
		}
	}
	return bits
}

// insertRoute registers fn for method(s) on pattern, creating or reusing the
// node for that exact pattern string.
func (t *node[C]) insertRoute(method methodTyp, pattern string, fn handler.HandlerFunc[C]) *node[C] {
	var n *node[C]
	for _, existing := range t.children {
		if existing.pattern == pattern {
			n = existing
			break
		}
	}

	if n == nil {
		n = &node[C]{
			pattern:   pattern,
			segments:  parsePattern(pattern),
			endpoints: make(map[methodTyp]*endpoint[C]),
		}
		t.children = append(t.children, n)
	}

	ep := &endpoint[C]{handler: fn, pattern: pattern}
	for _, bit := range expandBits(method) {
		n.endpoints[bit] = ep
	}

	return n
}

// weight scores a segment's specificity at position i; lower is tried first.
// Position dominates kind so that e.g. a static match at an earlier segment
// always outranks a param match at a later one, mirroring radix-tree descent.
func weight(kind segKind, i int) int64 {
	const base int64 = 4
	pow := int64(1)
	for e := 0; e < 20-i && e < 40; e++ {
		pow *= base
	}
	return int64(kind) * pow
}

// match attempts to match routeSegs against pathSegs, returning the matched
// params and a specificity score (lower wins) on success.
func match(routeSegs []segment, pathSegs []string) (bool, Params, int64) {
	var params Params
	var score int64

	for i, seg := range routeSegs {
		if seg.kind == segWildcard {
			rest := strings.Join(pathSegs[i:], "/")
			params.Keys = append(params.Keys, "*")
			params.Values = append(params.Values, rest)
			score += weight(segWildcard, i)
			return true, params, score
		}

		if i >= len(pathSegs) {
			return false, Params{}, 0
		}
		ps := pathSegs[i]

		switch seg.kind {
		case segStatic:
			if seg.lit != ps {
				return false, Params{}, 0
			}
		case segRegexp:
			if !seg.re.MatchString(ps) {
				return false, Params{}, 0
			}
			params.Keys = append(params.Keys, seg.name)
			params.Values = append(params.Values, ps)
			score += weight(segRegexp, i)
		case segParam:
			params.Keys = append(params.Keys, seg.name)
			params.Values = append(params.Values, ps)
			score += weight(segParam, i)
		}
	}

	if len(pathSegs) != len(routeSegs) {
		return false, Params{}, 0
	}
	return true, params, score
}

// findRoute returns the best-matching node for path, the node's endpoint
// table, the handler for method (nil if the node doesn't support it), and
// the matched params.
func (t *node[C]) findRoute(method methodTyp, path string) (*node[C], map[methodTyp]*endpoint[C], handler.HandlerFunc[C], Params) {
	pathSegs := splitPath(path)

	var best *node[C]
	var bestParams Params
	var bestScore int64 = -1

	for _, n := range t.children {
		ok, params, score := match(n.segments, pathSegs)
		if !ok {
			continue
		}
		if best == nil || score < bestScore {
			best = n
			bestParams = params
			bestScore = score
		}
	}

	if best == nil {
		return nil, nil, nil, Params{}
	}

	ep := best.endpoints[method]
	if ep == nil {
		return best, best.endpoints, nil, bestParams
	}
	return best, best.endpoints, ep.handler, bestParams
}

// routes lists every registered (method, pattern) pair, excluding internal
// mount stubs.
func (t *node[C]) routes() []Route {
	var out []Route
	for _, n := range t.children {
		for mt, ep := range n.endpoints {
			if mt == mSTUB {
				continue
			}
			name, ok := reverseMethodMap[mt]
			if !ok {
				continue
			}
			out = append(out, Route{Method: name, Pattern: ep.pattern})
		}
	}
	return out
}

// chain composes middlewares around fn, applied in the order given (the
// first middleware runs outermost).
func chain[C handler.Context](middlewares []handler.Middleware[C], fn handler.HandlerFunc[C]) handler.HandlerFunc[C] {
	h := fn
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}
