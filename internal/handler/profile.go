package handler

import (
	"net/http"
)

// profileUpdateRequest is the body of PUT /profile. Only the display name is
// editable here; the photo goes through POST /profile/photo.
type profileUpdateRequest struct {
	Name string `json:"name"`
}

// GetProfile handles GET /profile.
func (s *Server) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(w, r)
	if !ok {
		return
	}

	user, err := s.accounts.Profile(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, userToResponse(user))
}

// UpdateProfile handles PUT /profile.
func (s *Server) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(w, r)
	if !ok {
		return
	}

	var req profileUpdateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := s.accounts.UpdateProfile(r.Context(), userID, req.Name, "")
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, userToResponse(user))
}

// UploadProfilePhoto handles POST /profile/photo. The body is multipart form
// data with the image in the "photo" field. The stored photo URL comes back
// on the updated profile.
func (s *Server) UploadProfilePhoto(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(w, r)
	if !ok {
		return
	}

	file, header, err := r.FormFile("photo")
	if err != nil {
		badRequest(w, "multipart field photo is required")
		return
	}
	defer file.Close()

	photoURL, err := s.photos.Upload(r.Context(), header.Filename, file)
	if err != nil {
		writeError(w, r, err)
		return
	}

	user, err := s.accounts.UpdateProfile(r.Context(), userID, "", photoURL)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, userToResponse(user))
}
