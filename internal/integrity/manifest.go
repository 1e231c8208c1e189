package integrity

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
)

// Manifest format, one member per line, sorted by path, with a footer that
// covers the body:
//
//	{digest}  {path}
//	{digest}  {path}
//	SHA256 {footer digest}
//
// The double space between digest and path follows the sha256sum convention.
// The footer digest is the SHA-256 of the body lines (everything above the
// footer, newlines included): it is the single value that seals the pack.

const footerTag = "SHA256 "

var (
	ErrManifestEmpty     = errors.New("manifest has no entries")
	ErrManifestMalformed = errors.New("manifest line malformed")
	ErrManifestNoFooter  = errors.New("manifest footer missing")
	ErrFooterMismatch    = errors.New("manifest footer digest mismatch")
)

// Entry is one manifest member.
type Entry struct {
	Path   string
	Digest Digest
}

// WriteManifest writes entries sorted by path followed by the footer line,
// and returns the footer digest.
func WriteManifest(w io.Writer, entries []Entry) (Digest, error) {
	if len(entries) == 0 {
		return "", ErrManifestEmpty
	}
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })

	var body strings.Builder
	for _, e := range sorted {
		fmt.Fprintf(&body, "%s  %s\n", e.Digest, e.Path)
	}
	footer := Sum256([]byte(body.String()))

	if _, err := io.WriteString(w, body.String()); err != nil {
		return "", fmt.Errorf("write manifest body: %w", err)
	}
	if _, err := fmt.Fprintf(w, "%s%s\n", footerTag, footer); err != nil {
		return "", fmt.Errorf("write manifest footer: %w", err)
	}
	return footer, nil
}

// ParseManifest reads a manifest, validates its footer digest against the
// body, and returns the entries and footer digest.
func ParseManifest(r io.Reader) ([]Entry, Digest, error) {
	var (
		entries []Entry
		body    strings.Builder
		footer  Digest
	)

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		if rest, ok := strings.CutPrefix(line, footerTag); ok {
			footer = Digest(rest)
			continue
		}
		digest, path, ok := strings.Cut(line, "  ")
		if !ok || digest == "" || path == "" {
			return nil, "", fmt.Errorf("%w: %q", ErrManifestMalformed, line)
		}
		entries = append(entries, Entry{Path: path, Digest: Digest(digest)})
		body.WriteString(line)
		body.WriteByte('\n')
	}
	if err := sc.Err(); err != nil {
		return nil, "", fmt.Errorf("read manifest: %w", err)
	}
	if len(entries) == 0 {
		return nil, "", ErrManifestEmpty
	}
	if footer == "" {
		return nil, "", ErrManifestNoFooter
	}
	if got := Sum256([]byte(body.String())); got != footer {
		return nil, "", fmt.Errorf("%w: recorded %s, computed %s", ErrFooterMismatch, footer, got)
	}
	return entries, footer, nil
}

// Mismatch describes one entry whose actual digest differs from the manifest.
type Mismatch struct {
	Path   string
	Want   Digest
	Got    Digest
	Absent bool
}

// Verify compares manifest entries against actual digests keyed by path.
// Paths missing from got are reported as absent.
func Verify(entries []Entry, got map[string]Digest) []Mismatch {
	var out []Mismatch
	for _, e := range entries {
		actual, ok := got[e.Path]
		if !ok {
			out = append(out, Mismatch{Path: e.Path, Want: e.Digest, Absent: true})
			continue
		}
		if actual != e.Digest {
			out = append(out, Mismatch{Path: e.Path, Want: e.Digest, Got: actual})
		}
	}
	return out
}
