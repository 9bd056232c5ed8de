package handlers

import (
	"net/http"

	"github.com/Dosada05/team-manager/services"
)

type CardHandler struct {
	cardService services.CardService
}

func NewCardHandler(cs services.CardService) *CardHandler {
	return &CardHandler{
		cardService: cs,
	}
}

// ListCards godoc
// @Summary Карточки игры
// @Tags cards
// @Produce json
// @Param gameID path int true "Game ID"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /games/{gameID}/cards [get]
func (h *CardHandler) ListCards(w http.ResponseWriter, r *http.Request) {
	gameID, err := getIDFromURL(r, "gameID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	cards, err := h.cardService.List(r.Context(), gameID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"cards": cards}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// CreateCard godoc
// @Summary Добавить карточку
// @Description Красная или вторая жёлтая ставит в очередь пересчёт сыгранных минут.
// @Tags cards
// @Accept json
// @Produce json
// @Param gameID path int true "Game ID"
// @Param input body services.CreateCardInput true "Card"
// @Success 201 {object} services.CardMutationResult
// @Failure 400 {object} map[string]string "Ошибка валидации"
// @Failure 404 {object} map[string]string "Игра или игрок не найдены"
// @Security BearerAuth
// @Router /games/{gameID}/cards [post]
func (h *CardHandler) CreateCard(w http.ResponseWriter, r *http.Request) {
	gameID, err := getIDFromURL(r, "gameID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.CreateCardInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.cardService.Create(r.Context(), gameID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"card": result.Card, "job": result.Job}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *CardHandler) UpdateCard(w http.ResponseWriter, r *http.Request) {
	gameID, err := getIDFromURL(r, "gameID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	cardID, err := getIDFromURL(r, "cardID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.UpdateCardInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.cardService.Update(r.Context(), gameID, cardID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"card": result.Card, "job": result.Job}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *CardHandler) DeleteCard(w http.ResponseWriter, r *http.Request) {
	gameID, err := getIDFromURL(r, "gameID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	cardID, err := getIDFromURL(r, "cardID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.cardService.Delete(r.Context(), gameID, cardID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"deleted": cardID, "job": result.Job}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
