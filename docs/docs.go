// Package docs registers the swagger document served at /swagger/doc.json.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "paths": {
        "/auth/login": {"post": {"tags": ["auth"], "summary": "Вход, возвращает JWT", "responses": {"200": {"description": "OK"}, "401": {"description": "Неверный email или пароль"}}}},
        "/auth/register": {"post": {"tags": ["auth"], "summary": "Создать пользователя (только admin)", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created"}, "409": {"description": "Email занят"}}}},
        "/healthz": {"get": {"tags": ["health"], "summary": "Liveness probe", "responses": {"200": {"description": "OK"}, "503": {"description": "Database unavailable"}}}},
        "/games": {"post": {"tags": ["games"], "summary": "Создать игру", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created"}, "400": {"description": "Ошибка валидации"}}}},
        "/games/{gameID}": {"get": {"tags": ["games"], "summary": "Получить игру с составом", "security": [{"BearerAuth": []}], "parameters": [{"name": "gameID", "in": "path", "required": true, "type": "integer"}], "responses": {"200": {"description": "OK"}, "404": {"description": "Игра не найдена"}}}},
        "/games/{gameID}/draft": {
            "get": {"tags": ["drafts"], "summary": "Черновик игры", "security": [{"BearerAuth": []}], "parameters": [{"name": "gameID", "in": "path", "required": true, "type": "integer"}], "responses": {"200": {"description": "OK"}}},
            "put": {"tags": ["drafts"], "summary": "Автосохранение черновика", "security": [{"BearerAuth": []}], "parameters": [{"name": "gameID", "in": "path", "required": true, "type": "integer"}], "responses": {"200": {"description": "OK"}, "400": {"description": "Тело не является JSON-объектом"}, "409": {"description": "Статус игры не допускает черновик"}}}
        },
        "/games/{gameID}/played": {"post": {"tags": ["games"], "summary": "Отметить игру сыгранной", "security": [{"BearerAuth": []}], "parameters": [{"name": "gameID", "in": "path", "required": true, "type": "integer"}], "responses": {"200": {"description": "OK"}, "409": {"description": "Недопустимый переход статуса"}, "422": {"description": "Неверный стартовый состав"}}}},
        "/games/{gameID}/finalize": {"post": {"tags": ["games"], "summary": "Отправить финальный отчёт", "security": [{"BearerAuth": []}], "parameters": [{"name": "gameID", "in": "path", "required": true, "type": "integer"}], "responses": {"200": {"description": "OK"}, "409": {"description": "Недопустимый переход статуса"}, "422": {"description": "Отчёт неполный"}}}},
        "/games/{gameID}/postpone": {"post": {"tags": ["games"], "summary": "Перенести игру", "security": [{"BearerAuth": []}], "parameters": [{"name": "gameID", "in": "path", "required": true, "type": "integer"}], "responses": {"200": {"description": "OK"}, "409": {"description": "Недопустимый переход статуса"}}}},
        "/games/{gameID}/reopen": {"post": {"tags": ["games"], "summary": "Вернуть финальный отчёт на редактирование", "security": [{"BearerAuth": []}], "parameters": [{"name": "gameID", "in": "path", "required": true, "type": "integer"}], "responses": {"200": {"description": "OK"}, "409": {"description": "Недопустимый переход статуса"}}}},
        "/games/{gameID}/cards": {
            "get": {"tags": ["cards"], "summary": "Карточки игры", "security": [{"BearerAuth": []}], "parameters": [{"name": "gameID", "in": "path", "required": true, "type": "integer"}], "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["cards"], "summary": "Добавить карточку", "security": [{"BearerAuth": []}], "parameters": [{"name": "gameID", "in": "path", "required": true, "type": "integer"}], "responses": {"201": {"description": "Created"}, "400": {"description": "Ошибка валидации"}}}
        },
        "/games/{gameID}/cards/{cardID}": {
            "put": {"tags": ["cards"], "summary": "Изменить карточку", "security": [{"BearerAuth": []}], "parameters": [{"name": "gameID", "in": "path", "required": true, "type": "integer"}, {"name": "cardID", "in": "path", "required": true, "type": "integer"}], "responses": {"200": {"description": "OK"}, "400": {"description": "Ошибка валидации"}, "404": {"description": "Карточка не найдена"}}},
            "delete": {"tags": ["cards"], "summary": "Удалить карточку", "security": [{"BearerAuth": []}], "parameters": [{"name": "gameID", "in": "path", "required": true, "type": "integer"}, {"name": "cardID", "in": "path", "required": true, "type": "integer"}], "responses": {"200": {"description": "OK"}, "404": {"description": "Карточка не найдена"}}}
        },
        "/games/{gameID}/stats": {"get": {"tags": ["stats"], "summary": "Сыгранные минуты игроков", "security": [{"BearerAuth": []}], "parameters": [{"name": "gameID", "in": "path", "required": true, "type": "integer"}], "responses": {"200": {"description": "OK"}}}},
        "/jobs": {"get": {"tags": ["jobs"], "summary": "Поиск фоновых задач", "security": [{"BearerAuth": []}], "parameters": [{"name": "jobType", "in": "query", "type": "string"}, {"name": "gameId", "in": "query", "type": "integer"}, {"name": "status", "in": "query", "type": "string"}], "responses": {"200": {"description": "OK"}, "400": {"description": "Неверный фильтр"}}}},
        "/jobs/{jobID}": {"get": {"tags": ["jobs"], "summary": "Получить фоновую задачу", "security": [{"BearerAuth": []}], "parameters": [{"name": "jobID", "in": "path", "required": true, "type": "string", "format": "uuid"}], "responses": {"200": {"description": "OK"}, "400": {"description": "Неверный id"}, "404": {"description": "Задача не найдена"}}}},
        "/ws/games/{gameID}": {"get": {"tags": ["realtime"], "summary": "WebSocket: события игры", "security": [{"BearerAuth": []}], "parameters": [{"name": "gameID", "in": "path", "required": true, "type": "integer"}, {"name": "token", "in": "query", "type": "string"}], "responses": {"101": {"description": "Switching Protocols"}, "404": {"description": "Игра не найдена"}}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Team Manager API",
	Description:      "Game lifecycle, drafts, match events and background jobs.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
