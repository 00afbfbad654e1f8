package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"docchat/internal/export"
	"docchat/internal/fallback"
	"docchat/internal/ingest"
	"docchat/internal/models"
	"docchat/internal/parser"
	"docchat/internal/responder"
	"docchat/internal/session"
)

const maxUploadBytes = 64 << 20

type chatRequest struct {
	Question string `json:"question"`
}

type chatResponse struct {
	Answer          string `json:"answer,omitempty"`
	HTML            string `json:"html,omitempty"`
	Web             bool   `json:"web,omitempty"`
	FallbackOffered bool   `json:"fallback_offered,omitempty"`
	Question        string `json:"question,omitempty"`
	Warning         string `json:"warning,omitempty"`
}

type fallbackRequest struct {
	Question string `json:"question"`
	Accept   bool   `json:"accept"`
}

// processDocuments ingests the uploaded files and binds the resulting index
// to the session, replacing any prior index. On failure the session keeps
// its previous state.
func (s *Server) processDocuments(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessionFor(w, r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not resolve session")
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart upload")
		return
	}
	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		writeError(w, http.StatusBadRequest, "Please upload at least one document")
		return
	}

	docs := make([]parser.Document, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			writeError(w, http.StatusBadRequest, "could not read upload: "+fh.Filename)
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			writeError(w, http.StatusBadRequest, "could not read upload: "+fh.Filename)
			return
		}
		docs = append(docs, parser.Document{Name: fh.Filename, Data: data})
	}

	idx, err := s.builder.Build(r.Context(), docs)
	if err != nil {
		s.logger.Error().Err(err).Msg("Document processing failed")
		switch {
		case errors.Is(err, ingest.ErrNoDocuments):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, parser.ErrUnparseable), errors.Is(err, parser.ErrUnsupportedFormat):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			writeError(w, http.StatusBadGateway, err.Error())
		}
		return
	}

	sess.Lock()
	applyErr := sess.Apply(session.IndexBuilt{Index: idx, Responder: s.newResponder(idx)})
	sess.Unlock()
	if applyErr != nil {
		writeError(w, http.StatusInternalServerError, applyErr.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Documents processed successfully"})
}

// chat answers one question according to the session state: a warning when
// nothing is indexed, a single web-backed answer when a fallback is
// pending, and a retrieval-augmented answer otherwise.
func (s *Server) chat(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessionFor(w, r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not resolve session")
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Question == "" {
		writeError(w, http.StatusBadRequest, "question is required")
		return
	}

	sess.Lock()
	defer sess.Unlock()

	switch sess.State() {
	case session.StateUninitialized:
		writeJSON(w, http.StatusOK, chatResponse{
			Warning: "Please upload and process a document first",
		})

	case session.StateWebFallbackPending:
		answer, err := sess.Responder().WebAnswer(r.Context(), req.Question)
		if err != nil {
			s.writeModelError(w, err)
			return
		}
		if err := sess.Apply(session.WebAnswered{Question: req.Question, Answer: answer}); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, chatResponse{
			Answer: answer,
			HTML:   renderMarkdown(answer),
			Web:    true,
		})

	case session.StateIndexed:
		answer, _, err := sess.Responder().Answer(r.Context(), req.Question, sess.History())
		if err != nil {
			s.writeModelError(w, err)
			return
		}
		if err := sess.Apply(session.Answered{Question: req.Question, Answer: answer}); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if fallback.NeedsFallback(answer) {
			// Present the offer instead of the literal hedge.
			writeJSON(w, http.StatusOK, chatResponse{
				Answer:          answer,
				FallbackOffered: true,
				Question:        req.Question,
			})
			return
		}
		writeJSON(w, http.StatusOK, chatResponse{
			Answer: answer,
			HTML:   renderMarkdown(answer),
		})
	}
}

// chatFallback records the user's response to a pending web-answer offer.
func (s *Server) chatFallback(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessionFor(w, r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not resolve session")
		return
	}

	var req fallbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sess.Lock()
	defer sess.Unlock()

	if !req.Accept {
		if err := sess.Apply(session.FallbackDeclined{}); err != nil {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{
			"message": "Okay. Please upload the correct document.",
		})
		return
	}

	question := req.Question
	if question == "" {
		question = lastUserQuestion(sess.History())
	}
	if err := sess.Apply(session.FallbackAccepted{Question: question}); err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Web search enabled. Ask again",
	})
}

// history returns the full chat history in order, with each turn's content
// rendered to HTML for display.
func (s *Server) history(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessionFor(w, r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not resolve session")
		return
	}

	sess.Lock()
	turns := sess.History()
	state := sess.State()
	sess.Unlock()

	type turnView struct {
		Role    string `json:"role"`
		Content string `json:"content"`
		HTML    string `json:"html"`
	}
	views := make([]turnView, len(turns))
	for i, turn := range turns {
		views[i] = turnView{
			Role:    string(turn.Role),
			Content: turn.Content,
			HTML:    renderMarkdown(turn.Content),
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"state": state.String(),
		"turns": views,
	})
}

// exportTranscript renders the session history as a downloadable PDF.
func (s *Server) exportTranscript(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessionFor(w, r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not resolve session")
		return
	}

	sess.Lock()
	turns := sess.History()
	sess.Unlock()

	data, err := export.Render(turns)
	if err != nil {
		s.logger.Error().Err(err).Msg("Transcript export failed")
		writeError(w, http.StatusInternalServerError, "transcript export failed")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="multi_doc_rag_chat.pdf"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	if _, err := w.Write(data); err != nil {
		s.logger.Debug().Err(err).Msg("Failed to write transcript")
	}
}

func (s *Server) writeModelError(w http.ResponseWriter, err error) {
	s.logger.Error().Err(err).Msg("Answer failed")
	// Model, embedding and retrieval failures all surface the same way:
	// no turn is recorded and the user may retry the question.
	status := http.StatusBadGateway
	if errors.Is(err, responder.ErrEmptyQuestion) {
		status = http.StatusBadRequest
	}
	writeError(w, status, err.Error())
}

func lastUserQuestion(history []models.Turn) string {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == models.RoleUser {
			return history[i].Content
		}
	}
	return ""
}
