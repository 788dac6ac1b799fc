package web

import "net/http"

// Home handles GET /.
func (s *Server) Home(w http.ResponseWriter, r *http.Request) {
	s.Templates.Render(w, http.StatusOK, "home.html", s.page(r, "Home", s.currentUser(r)))
}
