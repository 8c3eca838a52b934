package metadata

import (
	"net/http"
	"strings"

	chimw "github.com/go-chi/chi/v5/middleware"

	"grantgate/pkg/requestcontext"
)

// HeaderApplicantRef carries an opaque caller-side applicant reference used
// only to correlate evaluation logs.
const HeaderApplicantRef = "X-Applicant-Ref"

const maxApplicantRefLen = 128

// RequestMetadata copies the chi request ID and the applicant reference header
// into requestcontext so services can read them without importing net/http.
// It must run after chi's RequestID middleware.
func RequestMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if reqID := chimw.GetReqID(ctx); reqID != "" {
			ctx = requestcontext.WithRequestID(ctx, reqID)
		}
		if ref := ApplicantRefFromRequest(r); ref != "" {
			ctx = requestcontext.WithApplicantRef(ctx, ref)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ApplicantRefFromRequest returns the trimmed applicant reference header.
// Oversized values are dropped rather than truncated.
func ApplicantRefFromRequest(r *http.Request) string {
	ref := strings.TrimSpace(r.Header.Get(HeaderApplicantRef))
	if len(ref) > maxApplicantRefLen {
		return ""
	}
	return ref
}
