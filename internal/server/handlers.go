package server

import (
	"cmp"
	"encoding/json"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/matzehuels/worktime/pkg/arrange"
	"github.com/matzehuels/worktime/pkg/cache"
	"github.com/matzehuels/worktime/pkg/errors"
	"github.com/matzehuels/worktime/pkg/httputil"
	"github.com/matzehuels/worktime/pkg/worktime"
)

const maxArrangeBody = 1 << 20

// Output formats of the main page.
const (
	formatHTML  = "html"
	formatJSON  = "json"
	formatPlain = "plain"
)

func (s *Server) handleMain(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	format := cmp.Or(q.Get("format"), formatHTML)
	if !slices.Contains([]string{formatHTML, formatJSON, formatPlain}, format) {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidFormat, "format must be html, json or plain, got %q", format))
		return
	}
	numbers, err := worktime.ParseNumbers(q.Get("numbers"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	summary, err := s.tracker.Summary(r.Context(), numbers)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	switch format {
	case formatJSON:
		writeJSON(w, http.StatusOK, summary)
	case formatPlain:
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if err := worktime.WritePlain(w, summary); err != nil {
			logger(r).Warn("write plain summary", "err", err)
		}
	default:
		s.writePage(w, r, summary)
	}
}

func (s *Server) handleSwitch(w http.ResponseWriter, r *http.Request) {
	mode := r.PostFormValue("mode")
	if mode == "" {
		s.reject(w, r, errors.New(errors.ErrCodeInvalidMode, "missing mode"))
		return
	}
	res, err := s.tracker.SwitchMode(r.Context(), mode)
	if err != nil {
		s.reject(w, r, err)
		return
	}
	logger(r).Info("switched mode", "from", cmp.Or(res.From, worktime.NoMode), "to", cmp.Or(res.To, worktime.NoMode), "elapsed", res.Elapsed)
	s.done(w, r)
}

func (s *Server) handleAdjust(w http.ResponseWriter, r *http.Request) {
	mode := r.PostFormValue("mode")
	minutes, err := adjustMinutes(r.PostFormValue("add"), r.PostFormValue("subtract"))
	if err == nil && mode == "" {
		err = errors.New(errors.ErrCodeInvalidMode, "missing mode")
	}
	if err != nil {
		s.reject(w, r, err)
		return
	}
	res, err := s.tracker.Adjust(r.Context(), mode, minutes)
	if err != nil {
		s.reject(w, r, err)
		return
	}
	logger(r).Info("adjusted total", "mode", res.Mode, "delta", res.Delta, "total", res.Total)
	s.done(w, r)
}

// adjustMinutes returns the signed number of minutes of an adjust form.
// add wins when both fields are set.
func adjustMinutes(add, subtract string) (int, error) {
	field, value, sign := "add", add, 1
	if add == "" {
		field, value, sign = "subtract", subtract, -1
	}
	if value == "" {
		return 0, errors.New(errors.ErrCodeInvalidAdjustment, "missing add or subtract")
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return 0, errors.New(errors.ErrCodeInvalidAdjustment, "%s must be a non-negative number of minutes, got %q", field, value)
	}
	return sign * n, nil
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	era, err := s.tracker.Clear(r.Context(), "")
	if err != nil {
		s.reject(w, r, err)
		return
	}
	logger(r).Info("cleared", "era", era.ID)
	s.done(w, r)
}

func (s *Server) handleSwitchEra(w http.ResponseWriter, r *http.Request) {
	if desc := r.PostFormValue("newEra"); desc != "" {
		era, err := s.tracker.Clear(r.Context(), desc)
		if err != nil {
			s.reject(w, r, err)
			return
		}
		logger(r).Info("started era", "era", era.ID, "description", desc)
		s.done(w, r)
		return
	}

	raw := r.PostFormValue("era")
	if raw == "" {
		s.done(w, r)
		return
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		s.reject(w, r, errors.New(errors.ErrCodeInvalidEra, "invalid era id %q", raw))
		return
	}
	if err := s.tracker.SwitchEra(r.Context(), id); err != nil {
		s.reject(w, r, err)
		return
	}
	logger(r).Info("switched era", "era", id)
	s.done(w, r)
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.reject(w, r, errors.Wrap(errors.ErrCodeInvalidSetting, err, "parse settings form"))
		return
	}
	if len(r.PostForm) == 0 {
		s.reject(w, r, errors.New(errors.ErrCodeInvalidSetting, "no settings given"))
		return
	}

	names := make([]string, 0, len(r.PostForm))
	for name := range r.PostForm {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		on, err := parseSwitch(r.PostForm.Get(name))
		if err == nil {
			err = s.tracker.SetSetting(r.Context(), name, on)
		}
		if err != nil {
			s.reject(w, r, err)
			return
		}
		logger(r).Info("changed setting", "name", name, "on", on)
	}
	s.done(w, r)
}

func parseSwitch(v string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "on", "true", "yes", "1":
		return true, nil
	case "off", "false", "no", "0":
		return false, nil
	}
	return false, errors.New(errors.ErrCodeInvalidSetting, "setting value must be on or off, got %q", v)
}

func (s *Server) handleArrange(w http.ResponseWriter, r *http.Request) {
	var req arrange.Request
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxArrangeBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidLayout, err, "decode arrange request"))
		return
	}
	if err := req.Validate(); err != nil {
		s.writeError(w, r, err)
		return
	}

	minSpace, maxPasses := s.opts.MinSpace, s.opts.MaxPasses
	if req.MinSpace != nil {
		minSpace = *req.MinSpace
	}
	if req.MaxPasses != nil {
		maxPasses = *req.MaxPasses
	}
	body, err := json.Marshal(arrange.Request{TotalWidth: req.TotalWidth, Boxes: req.Boxes})
	if err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInternal, err, "encode arrange request"))
		return
	}
	key := s.opts.Keyer.ArrangeKey(cache.Hash(body), minSpace, maxPasses)

	ctx := r.Context()
	data, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		logger(r).Warn("arrange cache read failed", "err", err)
	}
	if ok {
		w.Header().Set("X-Cache", "hit")
		writeRaw(w, http.StatusOK, data)
		return
	}

	res, err := req.Solve(ctx,
		arrange.WithMinSpace(s.opts.MinSpace),
		arrange.WithMaxPasses(s.opts.MaxPasses),
		arrange.WithLogger(logger(r)),
	)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if data, err = json.Marshal(res); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInternal, err, "encode arrange response"))
		return
	}
	if err := s.cache.Set(ctx, key, data, s.opts.CacheTTL); err != nil {
		logger(r).Warn("arrange cache write failed", "err", err)
	}
	w.Header().Set("X-Cache", "miss")
	writeRaw(w, http.StatusOK, data)
}

// done finishes a successful form action: JSON clients get the fresh
// summary, browsers go back to the main page.
func (s *Server) done(w http.ResponseWriter, r *http.Request) {
	if !wantsJSON(r) {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	summary, err := s.tracker.Summary(r.Context(), worktime.NumbersText)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// reject finishes a failed form action. Browsers are sent back to the main
// page when the input was invalid.
func (s *Server) reject(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError || wantsJSON(r) {
		s.writeError(w, r, err)
		return
	}
	logger(r).Warn("rejected "+r.URL.Path, "err", errors.UserMessage(err))
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		logger(r).Error("request failed", "path", r.URL.Path, "err", err)
	}
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	writeJSON(w, status, httputil.ErrorResponse{Error: errors.UserMessage(err), Code: string(code)})
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeRaw(w, status, data)
}

func writeRaw(w http.ResponseWriter, status int, data []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
