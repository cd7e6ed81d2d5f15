package share

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"

	"github.com/gorilla/mux"

	"discshare/internal/logging"
	"discshare/internal/middleware"
)

// chunkSize is how much of a disc image is read and pushed per write
// while streaming a range response.
const chunkSize = 16 * 1024

// newRouter registers one route per path-table entry. Matching is done
// against the escaped path, so "/My%20Game.iso" on the wire hits the
// table key of the same spelling.
func newRouter(log *logging.Logger, table map[string]string) *mux.Router {
	r := mux.NewRouter()
	r.UseEncodedPath()
	r.Use(middleware.Recover(log))
	r.Use(middleware.RequestLog(log))
	for key, file := range table {
		r.HandleFunc(key, serveDisc(log, file))
	}
	return r
}

// serveDisc answers HEAD and ranged GET for a single disc image. GETs
// without a Range header get 418: clients must be range-aware, a plain
// browser download of a multi-gigabyte image is never what anyone wants.
func serveDisc(log *logging.Logger, file string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		info, err := os.Stat(file)
		if err != nil {
			log.Warn("stat failed", logging.String("file", file), logging.Err(err))
			plainError(w, http.StatusInternalServerError, "File access failed.")
			return
		}
		size := info.Size()

		if r.Method == http.MethodHead {
			w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
			w.Header().Set("Content-Type", "application/octet-stream")
			w.Header().Set("Accept-Ranges", "bytes")
			w.WriteHeader(http.StatusOK)
			return
		}

		rangeHdr := r.Header.Get("Range")
		if rangeHdr == "" {
			plainError(w, http.StatusTeapot, "This server only supports range requests.")
			return
		}

		var begin, last int64
		if n, err := fmt.Sscanf(rangeHdr, "bytes=%d-%d", &begin, &last); err != nil || n != 2 {
			plainError(w, http.StatusBadRequest, "Could not understand range request.")
			return
		}

		// Bounds are checked before the file is ever opened.
		if begin < 0 || begin > last || last >= size {
			plainError(w, http.StatusRequestedRangeNotSatisfiable, "Range goes outside of file.")
			return
		}

		f, err := os.Open(file)
		if err != nil {
			log.Warn("open failed", logging.String("file", file), logging.Err(err))
			plainError(w, http.StatusInternalServerError, "File access failed.")
			return
		}
		defer f.Close()
		if _, err := f.Seek(begin, io.SeekStart); err != nil {
			log.Warn("seek failed", logging.String("file", file), logging.Err(err))
			plainError(w, http.StatusInternalServerError, "File access failed.")
			return
		}

		length := last - begin + 1
		w.Header().Set("Content-Length", strconv.FormatInt(length, 10))
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Header().Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", begin, last, size))
		w.WriteHeader(http.StatusPartialContent)

		buf := make([]byte, chunkSize)
		for pos := int64(0); pos < length; pos += chunkSize {
			n := chunkSize
			if remaining := length - pos; remaining < int64(n) {
				n = int(remaining)
			}
			if _, err := io.ReadFull(f, buf[:n]); err != nil {
				// Headers are gone already; all we can do is cut the
				// stream short and let the client notice the length
				// mismatch.
				log.Warn("read failed mid-range", logging.String("file", file), logging.Err(err))
				return
			}
			if _, err := w.Write(buf[:n]); err != nil {
				return
			}
		}
		if flusher, ok := w.(http.Flusher); ok {
			flusher.Flush()
		}
	}
}

func plainError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(status)
	io.WriteString(w, msg)
}
