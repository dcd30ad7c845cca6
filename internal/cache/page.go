package cache

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/GustavoFrossard/P.A.T.A/internal/domain"
)

var errUnknownShape = errors.New("unrecognized cached page shape")

// decodePage normalizes a cached room page to the envelope form. Two shapes
// are accepted on read: the paginated envelope {count, results} and a raw
// message array (legacy writers). Anything else is an errUnknownShape and the
// caller drops the entry.
func decodePage(raw []byte) (*domain.MessagePage, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, errUnknownShape
	}

	switch raw[0] {
	case '{':
		var env struct {
			Count   *int                 `json:"count"`
			Results *[]domain.MessageView `json:"results"`
		}
		if err := json.Unmarshal(raw, &env); err != nil || env.Results == nil {
			return nil, errUnknownShape
		}
		page := &domain.MessagePage{Results: *env.Results}
		if env.Count != nil {
			page.Count = *env.Count
		} else {
			page.Count = len(page.Results)
		}
		return page, nil
	case '[':
		var results []domain.MessageView
		if err := json.Unmarshal(raw, &results); err != nil {
			return nil, errUnknownShape
		}
		return &domain.MessagePage{Count: len(results), Results: results}, nil
	default:
		return nil, errUnknownShape
	}
}

// patchPage appends a message to a cached page in place, bumping the count.
// Fails with errUnknownShape when the cached value cannot be normalized; the
// caller invalidates instead of risking a silently divergent patch.
func patchPage(raw []byte, view domain.MessageView) ([]byte, error) {
	page, err := decodePage(raw)
	if err != nil {
		return nil, err
	}

	page.Results = append(page.Results, view)
	page.Count++

	return json.Marshal(page)
}
