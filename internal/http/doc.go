// Package http exposes the site content over net/http.
//
// Public routes:
//   - Listings: GET /blog, GET /news (query q, category, page, lang)
//   - Posts: GET /blog/{slug}, GET /news/{slug}
//   - Disclaimer: POST /api/confirm-medical-professional
//   - Language: GET /api/language, POST /api/language
//
// Admin routes mount under /admin/api:
//   - Collections: /{kind}, /{kind}/{id}, /{kind}/{id}/publish
//   - Editor uploads: /{kind}/uploads
//
// Every failure is answered with a JSON body whose status field reads
// "Error: <message>". Host applications can register handlers on their own
// mux as needed.
package http
