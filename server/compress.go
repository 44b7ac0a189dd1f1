package server

import (
	"bytes"
	"compress/gzip"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/andybalholm/brotli"
)

const (
	encodingBrotli = "br"
	encodingGzip   = "gzip"
)

var compressibleTypes = []string{
	"application/json",
	"application/javascript",
	"application/xml",
	"image/svg+xml",
	"text/",
}

// Compression buffers responses and compresses bodies of at least
// threshold bytes with brotli, or gzip for clients without brotli.
// Responses that already carry a Content-Encoding pass through.
func Compression(threshold, level int) Middleware {
	brotliPool := sync.Pool{New: func() any { return brotli.NewWriterLevel(io.Discard, level) }}
	gzipPool := sync.Pool{New: func() any {
		zw, _ := gzip.NewWriterLevel(io.Discard, gzip.DefaultCompression)
		return zw
	}}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			enc := negotiateEncoding(r.Header.Get("Accept-Encoding"))
			if enc == "" || r.Method == http.MethodHead {
				next.ServeHTTP(w, r)
				return
			}
			w.Header().Add("Vary", "Accept-Encoding")

			bw := &bufferedWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(bw, r)

			h := w.Header()
			body := bw.buf.Bytes()
			if bw.passthrough || len(body) < threshold || h.Get("Content-Encoding") != "" || !compressible(h.Get("Content-Type")) {
				bw.flush()
				return
			}

			var out bytes.Buffer
			switch enc {
			case encodingBrotli:
				bz := brotliPool.Get().(*brotli.Writer)
				bz.Reset(&out)
				_, _ = bz.Write(body)
				_ = bz.Close()
				brotliPool.Put(bz)
			default:
				zw := gzipPool.Get().(*gzip.Writer)
				zw.Reset(&out)
				_, _ = zw.Write(body)
				_ = zw.Close()
				gzipPool.Put(zw)
			}

			h.Set("Content-Encoding", enc)
			h.Set("Content-Length", strconv.Itoa(out.Len()))
			w.WriteHeader(bw.status)
			_, _ = w.Write(out.Bytes())
		})
	}
}

// negotiateEncoding prefers brotli, then gzip. Codings with q=0 are
// refused.
func negotiateEncoding(accept string) string {
	var br, gz bool
	for _, part := range strings.Split(accept, ",") {
		name, params, _ := strings.Cut(strings.TrimSpace(part), ";")
		if q, ok := strings.CutPrefix(strings.TrimSpace(params), "q="); ok {
			if v, err := strconv.ParseFloat(q, 64); err == nil && v == 0 {
				continue
			}
		}
		switch strings.ToLower(strings.TrimSpace(name)) {
		case encodingBrotli:
			br = true
		case encodingGzip:
			gz = true
		}
	}
	switch {
	case br:
		return encodingBrotli
	case gz:
		return encodingGzip
	default:
		return ""
	}
}

func compressible(contentType string) bool {
	ct, _, _ := strings.Cut(contentType, ";")
	ct = strings.ToLower(strings.TrimSpace(ct))
	if ct == "" {
		return false
	}
	for _, t := range compressibleTypes {
		if strings.HasSuffix(t, "/") && strings.HasPrefix(ct, t) || ct == t {
			return true
		}
	}
	return false
}

// bufferedWriter holds the response until the handler returns. A Flush
// from the handler switches it to passthrough, sending what was buffered.
type bufferedWriter struct {
	http.ResponseWriter
	buf         bytes.Buffer
	status      int
	wroteHeader bool
	passthrough bool
	flushed     bool
}

func (b *bufferedWriter) WriteHeader(code int) {
	if b.passthrough {
		b.ResponseWriter.WriteHeader(code)
		return
	}
	if !b.wroteHeader {
		b.status = code
		b.wroteHeader = true
	}
}

func (b *bufferedWriter) Write(p []byte) (int, error) {
	if b.passthrough {
		return b.ResponseWriter.Write(p)
	}
	b.wroteHeader = true
	return b.buf.Write(p)
}

func (b *bufferedWriter) Flush() {
	if !b.passthrough {
		b.passthrough = true
		b.flush()
	}
	if f, ok := b.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// flush sends the buffered status and body uncompressed.
func (b *bufferedWriter) flush() {
	if b.flushed || (b.buf.Len() == 0 && !b.wroteHeader) {
		return
	}
	b.flushed = true
	b.ResponseWriter.WriteHeader(b.status)
	_, _ = b.ResponseWriter.Write(b.buf.Bytes())
	b.buf.Reset()
}

func (b *bufferedWriter) Unwrap() http.ResponseWriter { return b.ResponseWriter }
