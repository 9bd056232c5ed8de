package handlers

import (
	"net/http"

	"github.com/Dosada05/team-manager/services"
)

type GameHandler struct {
	gameService services.GameService
}

func NewGameHandler(gs services.GameService) *GameHandler {
	return &GameHandler{
		gameService: gs,
	}
}

// CreateGame godoc
// @Summary Создать игру
// @Tags games
// @Accept json
// @Produce json
// @Param input body services.CreateGameInput true "Game"
// @Success 201 {object} map[string]interface{} "Игра создана"
// @Failure 400 {object} map[string]string "Ошибка валидации"
// @Failure 404 {object} map[string]string "Команда не найдена"
// @Security BearerAuth
// @Router /games [post]
func (h *GameHandler) CreateGame(w http.ResponseWriter, r *http.Request) {
	var input services.CreateGameInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	game, err := h.gameService.CreateGame(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"game": game}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetGame godoc
// @Summary Получить игру с составом
// @Tags games
// @Produce json
// @Param gameID path int true "Game ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string "Игра не найдена"
// @Security BearerAuth
// @Router /games/{gameID} [get]
func (h *GameHandler) GetGame(w http.ResponseWriter, r *http.Request) {
	gameID, err := getIDFromURL(r, "gameID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	game, err := h.gameService.GetGame(r.Context(), gameID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"game": game}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetDraft godoc
// @Summary Черновик игры (состав до игры или отчёт после)
// @Tags drafts
// @Produce json
// @Param gameID path int true "Game ID"
// @Success 200 {object} services.DraftView
// @Failure 404 {object} map[string]string "Игра не найдена"
// @Security BearerAuth
// @Router /games/{gameID}/draft [get]
func (h *GameHandler) GetDraft(w http.ResponseWriter, r *http.Request) {
	gameID, err := getIDFromURL(r, "gameID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	draft, err := h.gameService.GetDraft(r.Context(), gameID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"draft": draft}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SaveDraft godoc
// @Summary Автосохранение черновика
// @Description Верхнеуровневые ключи тела заменяют ключи черновика целиком, остальные сохраняются.
// @Tags drafts
// @Accept json
// @Produce json
// @Param gameID path int true "Game ID"
// @Param input body object true "Partial draft"
// @Success 200 {object} services.DraftView
// @Failure 400 {object} map[string]string "Тело не является JSON-объектом"
// @Failure 404 {object} map[string]string "Игра не найдена"
// @Failure 409 {object} map[string]string "Статус игры не допускает черновик"
// @Security BearerAuth
// @Router /games/{gameID}/draft [put]
func (h *GameHandler) SaveDraft(w http.ResponseWriter, r *http.Request) {
	gameID, err := getIDFromURL(r, "gameID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	body, err := readRawBody(w, r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	patch, err := services.ParseDraftPatch(body)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	draft, err := h.gameService.SaveDraft(r.Context(), gameID, patch)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"draft": draft}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// MarkPlayed godoc
// @Summary Отметить игру сыгранной
// @Description Без тела берёт состав из черновика. Требует ровно N игроков в стартовом составе.
// @Tags games
// @Accept json
// @Produce json
// @Param gameID path int true "Game ID"
// @Param input body services.MarkPlayedInput false "Roster override"
// @Success 200 {object} map[string]interface{}
// @Failure 409 {object} map[string]string "Недопустимый переход статуса"
// @Failure 422 {object} map[string]string "Неверный стартовый состав"
// @Security BearerAuth
// @Router /games/{gameID}/played [post]
func (h *GameHandler) MarkPlayed(w http.ResponseWriter, r *http.Request) {
	gameID, err := getIDFromURL(r, "gameID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.MarkPlayedInput
	if err := readOptionalJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	game, err := h.gameService.MarkPlayed(r.Context(), gameID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"game": game}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Finalize godoc
// @Summary Отправить финальный отчёт
// @Tags games
// @Accept json
// @Produce json
// @Param gameID path int true "Game ID"
// @Param input body services.FinalizeInput false "Overrides for the report draft"
// @Success 200 {object} map[string]interface{}
// @Failure 409 {object} map[string]string "Недопустимый переход статуса"
// @Failure 422 {object} map[string]interface{} "Отчёт неполный, missing перечисляет поля"
// @Security BearerAuth
// @Router /games/{gameID}/finalize [post]
func (h *GameHandler) Finalize(w http.ResponseWriter, r *http.Request) {
	gameID, err := getIDFromURL(r, "gameID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.FinalizeInput
	if err := readOptionalJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	game, err := h.gameService.Finalize(r.Context(), gameID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"game": game}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Postpone godoc
// @Summary Перенести игру
// @Tags games
// @Produce json
// @Param gameID path int true "Game ID"
// @Success 200 {object} map[string]interface{}
// @Failure 409 {object} map[string]string "Недопустимый переход статуса"
// @Security BearerAuth
// @Router /games/{gameID}/postpone [post]
func (h *GameHandler) Postpone(w http.ResponseWriter, r *http.Request) {
	gameID, err := getIDFromURL(r, "gameID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	game, err := h.gameService.Postpone(r.Context(), gameID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"game": game}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Reopen godoc
// @Summary Вернуть финальный отчёт на редактирование
// @Tags games
// @Accept json
// @Produce json
// @Param gameID path int true "Game ID"
// @Param input body services.ReopenInput false "restore_draft rebuilds the report draft"
// @Success 200 {object} map[string]interface{}
// @Failure 409 {object} map[string]string "Недопустимый переход статуса"
// @Security BearerAuth
// @Router /games/{gameID}/reopen [post]
func (h *GameHandler) Reopen(w http.ResponseWriter, r *http.Request) {
	gameID, err := getIDFromURL(r, "gameID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.ReopenInput
	if err := readOptionalJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	game, err := h.gameService.Reopen(r.Context(), gameID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"game": game}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
