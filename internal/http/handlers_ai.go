package httpapp

import (
	"net/http"
)

type contentRequest struct {
	Content     string `json:"content"`
	CodeSnippet string `json:"code_snippet"`
}

type codeRequest struct {
	Code     string `json:"code"`
	Language string `json:"language"`
}

type careerRequest struct {
	Skills          []string `json:"skills"`
	Interests       string   `json:"interests"`
	ExperienceLevel string   `json:"experience_level"`
}

// handleCheckContent godoc
//
//	@Summary		Check a draft post
//	@Description	Judges whether a draft fits a developer network and suggests hashtags. Never fails; falls back to approval.
//	@Tags			AI
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			draft	body		contentRequest	true	"Draft"
//	@Success		200		{object}	ai.ContentCheck
//	@Router			/api/ai/check-content [post]
func (s *Server) handleCheckContent(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireAuth(w, r); !ok {
		return
	}
	var req contentRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, s.ai.CheckContent(r.Context(), req.Content, req.CodeSnippet))
}

// handleGenerateCaption godoc
//
//	@Summary		Suggest a caption
//	@Description	Suggests a caption and hashtags. Falls back to the content and generic tags.
//	@Tags			AI
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			draft	body		contentRequest	true	"Draft"
//	@Success		200		{object}	ai.Caption
//	@Router			/api/ai/generate-caption [post]
func (s *Server) handleGenerateCaption(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireAuth(w, r); !ok {
		return
	}
	var req contentRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, s.ai.GenerateCaption(r.Context(), req.Content, req.CodeSnippet))
}

// handleExplainCode godoc
//
//	@Summary	Explain code
//	@Tags		AI
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		code	body		codeRequest	true	"Code"
//	@Success	200		{object}	map[string]string
//	@Failure	500		{object}	map[string]string	"AI service unavailable"
//	@Router		/api/ai/explain-code [post]
func (s *Server) handleExplainCode(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireAuth(w, r); !ok {
		return
	}
	var req codeRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	out, err := s.ai.ExplainCode(r.Context(), req.Code, req.Language)
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"explanation": out})
}

// handleDetectBugs godoc
//
//	@Summary	Review code for bugs
//	@Tags		AI
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		code	body		codeRequest	true	"Code"
//	@Success	200		{object}	map[string]string
//	@Failure	500		{object}	map[string]string	"AI service unavailable"
//	@Router		/api/ai/detect-bugs [post]
func (s *Server) handleDetectBugs(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireAuth(w, r); !ok {
		return
	}
	var req codeRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	out, err := s.ai.DetectBugs(r.Context(), req.Code, req.Language)
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"analysis": out})
}

// handleCareerGuidance godoc
//
//	@Summary	Career guidance
//	@Tags		AI
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		profile	body		careerRequest	true	"Skills and interests"
//	@Success	200		{object}	map[string]string
//	@Failure	500		{object}	map[string]string	"AI service unavailable"
//	@Router		/api/ai/career-guidance [post]
func (s *Server) handleCareerGuidance(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireAuth(w, r); !ok {
		return
	}
	var req careerRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	out, err := s.ai.CareerGuidance(r.Context(), req.Skills, req.Interests, req.ExperienceLevel)
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"guidance": out})
}
