package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Karama2000/kara-app-sub001/internal/curriculum"
	"github.com/Karama2000/kara-app-sub001/internal/session"
	"github.com/Karama2000/kara-app-sub001/pkg/response"
)

type editorProvider interface {
	Editor(ctx context.Context, sess *session.Session) (*curriculum.Editor, error)
}

// ProgramSelection selects the program, and optionally the unit, of the lesson form.
type ProgramSelection struct {
	ProgramID string `json:"programId"`
	UnitID    string `json:"unitId"`
}

// CurriculumHandler serves the lesson and test editor.
type CurriculumHandler struct {
	editors editorProvider
}

// NewCurriculumHandler constructs the handler.
func NewCurriculumHandler(editors editorProvider) *CurriculumHandler {
	return &CurriculumHandler{editors: editors}
}

// Editor godoc
// @Summary Editor state
// @Tags Curriculum
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /curriculum/editor [get]
func (h *CurriculumHandler) Editor(c *gin.Context) {
	editor, ok := h.editor(c)
	if !ok {
		return
	}
	response.JSON(c, http.StatusOK, editor.View())
}

// SelectProgram godoc
// @Summary Select program and unit
// @Description Changing the program clears the unit; the unit must belong to the program.
// @Tags Curriculum
// @Accept json
// @Produce json
// @Param payload body ProgramSelection true "Selection"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /curriculum/editor/program [put]
func (h *CurriculumHandler) SelectProgram(c *gin.Context) {
	editor, ok := h.editor(c)
	if !ok {
		return
	}
	var req ProgramSelection
	if !bindJSON(c, &req) {
		return
	}
	if err := editor.SelectProgram(c.Request.Context(), req.ProgramID); err != nil {
		response.Error(c, err)
		return
	}
	if req.UnitID != "" {
		if err := editor.SelectUnit(c.Request.Context(), req.UnitID); err != nil {
			response.Error(c, err)
			return
		}
	}
	response.JSON(c, http.StatusOK, editor.View())
}

// CreateLesson godoc
// @Summary Create lesson
// @Description JSON or multipart/form-data with an optional mediaFile.
// @Tags Curriculum
// @Accept json,mpfd
// @Produce json
// @Param payload body curriculum.LessonForm true "Lesson"
// @Success 201 {object} response.Envelope
// @Router /curriculum/lessons [post]
func (h *CurriculumHandler) CreateLesson(c *gin.Context) {
	h.submitLesson(c, "", http.StatusCreated)
}

// UpdateLesson godoc
// @Summary Update lesson
// @Tags Curriculum
// @Accept json,mpfd
// @Produce json
// @Param id path string true "Lesson ID"
// @Param payload body curriculum.LessonForm true "Lesson"
// @Success 200 {object} response.Envelope
// @Router /curriculum/lessons/{id} [put]
func (h *CurriculumHandler) UpdateLesson(c *gin.Context) {
	h.submitLesson(c, c.Param("id"), http.StatusOK)
}

// DeleteLesson godoc
// @Summary Delete lesson and its tests
// @Tags Curriculum
// @Param id path string true "Lesson ID"
// @Success 204
// @Router /curriculum/lessons/{id} [delete]
func (h *CurriculumHandler) DeleteLesson(c *gin.Context) {
	editor, ok := h.editor(c)
	if !ok {
		return
	}
	if err := editor.DeleteLesson(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// CreateTest godoc
// @Summary Create test under a lesson
// @Tags Curriculum
// @Accept json,mpfd
// @Produce json
// @Param id path string true "Lesson ID"
// @Param payload body curriculum.TestForm true "Test"
// @Success 201 {object} response.Envelope
// @Router /curriculum/lessons/{id}/tests [post]
func (h *CurriculumHandler) CreateTest(c *gin.Context) {
	h.submitTest(c, "", http.StatusCreated)
}

// UpdateTest godoc
// @Summary Update test
// @Tags Curriculum
// @Accept json,mpfd
// @Produce json
// @Param id path string true "Lesson ID"
// @Param testId path string true "Test ID"
// @Param payload body curriculum.TestForm true "Test"
// @Success 200 {object} response.Envelope
// @Router /curriculum/lessons/{id}/tests/{testId} [put]
func (h *CurriculumHandler) UpdateTest(c *gin.Context) {
	h.submitTest(c, c.Param("testId"), http.StatusOK)
}

// DeleteTest godoc
// @Summary Delete test
// @Tags Curriculum
// @Param id path string true "Lesson ID"
// @Param testId path string true "Test ID"
// @Success 204
// @Router /curriculum/lessons/{id}/tests/{testId} [delete]
func (h *CurriculumHandler) DeleteTest(c *gin.Context) {
	editor, ok := h.editor(c)
	if !ok {
		return
	}
	if err := editor.DeleteTest(c.Request.Context(), c.Param("id"), c.Param("testId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func (h *CurriculumHandler) submitLesson(c *gin.Context, id string, status int) {
	editor, ok := h.editor(c)
	if !ok {
		return
	}
	var form curriculum.LessonForm
	release := func() {}
	if isMultipart(c) {
		form = curriculum.LessonForm{
			Title:     c.PostForm("title"),
			Content:   c.PostForm("content"),
			ProgramID: c.PostForm("programId"),
			UnitID:    c.PostForm("unitId"),
		}
		media, closeMedia, err := uploadedFile(c, curriculum.MediaField)
		if err != nil {
			response.Error(c, err)
			return
		}
		form.Media, release = media, closeMedia
	} else if !bindJSON(c, &form) {
		return
	}
	defer release()
	form.ID = id

	lesson, err := editor.SubmitLesson(c.Request.Context(), form)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, status, lesson)
}

func (h *CurriculumHandler) submitTest(c *gin.Context, id string, status int) {
	editor, ok := h.editor(c)
	if !ok {
		return
	}
	var form curriculum.TestForm
	release := func() {}
	if isMultipart(c) {
		form = curriculum.TestForm{Title: c.PostForm("title"), Content: c.PostForm("content")}
		media, closeMedia, err := uploadedFile(c, curriculum.MediaField)
		if err != nil {
			response.Error(c, err)
			return
		}
		form.Media, release = media, closeMedia
	} else if !bindJSON(c, &form) {
		return
	}
	defer release()
	form.ID = id

	test, err := editor.SubmitTest(c.Request.Context(), c.Param("id"), form)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, status, test)
}

func (h *CurriculumHandler) editor(c *gin.Context) (*curriculum.Editor, bool) {
	sess, ok := sessionFromContext(c)
	if !ok {
		return nil, false
	}
	editor, err := h.editors.Editor(c.Request.Context(), sess)
	if err != nil {
		response.Error(c, err)
		return nil, false
	}
	return editor, true
}
