// Package source loads template documents from a local path or any
// location go-getter understands (http(s), s3::, gcs::, git::).
package source

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-getter"

	"github.com/teranos/corrfill/am"
	"github.com/teranos/corrfill/errors"
	"github.com/teranos/corrfill/jsonv"
	"github.com/teranos/corrfill/logger"
)

// Ref describes where a template reference points after detection.
type Ref struct {
	Input    string // as given
	Detected string // go-getter's normalized URL
	Local    string // filesystem path when the reference is local
}

// IsLocal reports whether the reference names a file on disk.
func (r Ref) IsLocal() bool { return r.Local != "" }

// Detect classifies ref. Local paths get "~" expanded and are made
// absolute against the working directory.
func Detect(ref string) (Ref, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return Ref{}, errors.NewInvalidRequestError("template reference cannot be empty")
	}

	pwd, err := os.Getwd()
	if err != nil {
		pwd = "."
	}

	expanded := am.ExpandHome(ref)
	detected, err := getter.Detect(expanded, pwd, getter.Detectors)
	if err != nil {
		return Ref{}, errors.WrapInvalidRequest(err, "failed to detect template source "+ref)
	}

	u, err := url.Parse(detected)
	if err != nil {
		return Ref{}, errors.WrapInvalidRequest(err, "failed to parse detected source "+detected)
	}

	r := Ref{Input: ref, Detected: detected}
	if u.Scheme == "file" || u.Scheme == "" {
		local := expanded
		if u.Scheme == "file" {
			local = u.Path
		}
		if !filepath.IsAbs(local) {
			local = filepath.Join(pwd, local)
		}
		r.Local = local
	}
	return r, nil
}

// Load reads the template named by ref.
func Load(ctx context.Context, ref string) (jsonv.Value, error) {
	r, err := Detect(ref)
	if err != nil {
		return jsonv.Null(), err
	}

	logger.Debugw("Template source detected",
		logger.FieldTemplate, r.Input,
		"detected", r.Detected)

	if r.IsLocal() {
		v, err := jsonv.ReadFile(r.Local)
		if err != nil {
			return jsonv.Null(), errors.Wrap(err, "load template")
		}
		return v, nil
	}
	return fetch(ctx, r)
}

// fetch downloads a remote template into a temp dir, reads it and removes
// the copy.
func fetch(ctx context.Context, r Ref) (jsonv.Value, error) {
	tempDir, err := os.MkdirTemp("", "corrfill-template-*")
	if err != nil {
		return jsonv.Null(), errors.Wrap(err, "failed to create temp directory")
	}
	defer os.RemoveAll(tempDir)

	dst := filepath.Join(tempDir, "template.json")
	client := &getter.Client{
		Ctx:     ctx,
		Src:     r.Detected,
		Dst:     dst,
		Mode:    getter.ClientModeFile,
		Getters: getter.Getters,
	}

	logger.Infow("Fetching template", logger.FieldTemplate, r.Input)
	if err := client.Get(); err != nil {
		if ctx.Err() != nil {
			return jsonv.Null(), errors.Wrapf(ctx.Err(), "fetch template %s", r.Input)
		}
		return jsonv.Null(), errors.WithHint(
			errors.Wrapf(err, "fetch template %s", r.Input),
			"remote templates are fetched with go-getter; check the URL and any credentials it needs",
		)
	}

	v, err := jsonv.ReadFile(dst)
	if err != nil {
		return jsonv.Null(), errors.Wrapf(err, "template %s", r.Input)
	}
	return v, nil
}
