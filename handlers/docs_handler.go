package handlers

import "net/http"

// apiDoc — swagger-описание публичной части API. Держим его статикой:
// генерация из аннотаций не окупается при таком размере поверхности.
const apiDoc = `{
  "swagger": "2.0",
  "info": {
    "title": "Session System API",
    "description": "Спортивные сессии, группы и месячные квоты тарифов.",
    "version": "1.0"
  },
  "basePath": "/",
  "schemes": ["http", "https"],
  "paths": {
    "/auth/register": {"post": {"summary": "Регистрация пользователя", "tags": ["auth"]}},
    "/auth/login": {"post": {"summary": "Вход, выдаёт JWT", "tags": ["auth"]}},
    "/sports": {"get": {"summary": "Справочник видов спорта", "tags": ["sports"]}},
    "/sports/{sportID}": {"get": {"summary": "Вид спорта по ID", "tags": ["sports"]}},
    "/sessions": {
      "get": {"summary": "Список сессий с фильтрами", "tags": ["sessions"]},
      "post": {"summary": "Создать сессию", "tags": ["sessions"]}
    },
    "/sessions/{sessionID}": {
      "get": {"summary": "Сессия по ID", "tags": ["sessions"]},
      "put": {"summary": "Обновить сессию", "tags": ["sessions"]},
      "delete": {"summary": "Удалить сессию", "tags": ["sessions"]}
    },
    "/sessions/{sessionID}/join": {"post": {"summary": "Присоединиться к сессии", "tags": ["sessions"]}},
    "/sessions/{sessionID}/leave": {"post": {"summary": "Покинуть сессию", "tags": ["sessions"]}},
    "/sessions/{sessionID}/publish": {"post": {"summary": "Опубликовать черновик", "tags": ["sessions"]}},
    "/sessions/{sessionID}/lock": {"post": {"summary": "Закрыть набор вручную", "tags": ["sessions"]}},
    "/sessions/{sessionID}/cancel": {"post": {"summary": "Отменить сессию", "tags": ["sessions"]}},
    "/sessions/{sessionID}/score": {"put": {"summary": "Выставить счёт", "tags": ["sessions"]}},
    "/sessions/{sessionID}/attendance": {"get": {"summary": "Лист явки", "tags": ["attendance"]}},
    "/sessions/{sessionID}/attendance/presence": {"post": {"summary": "Отметить присутствие участника", "tags": ["attendance"]}},
    "/sessions/{sessionID}/attendance/external/{attendeeID}": {"post": {"summary": "Отметить внешнего участника", "tags": ["attendance"]}},
    "/groups": {
      "get": {"summary": "Список групп", "tags": ["groups"]},
      "post": {"summary": "Создать группу", "tags": ["groups"]}
    },
    "/groups/{groupID}": {
      "get": {"summary": "Группа по ID", "tags": ["groups"]},
      "put": {"summary": "Обновить группу", "tags": ["groups"]},
      "delete": {"summary": "Удалить группу", "tags": ["groups"]}
    },
    "/groups/{groupID}/join": {"post": {"summary": "Вступить или подать заявку", "tags": ["groups"]}},
    "/groups/{groupID}/leave": {"post": {"summary": "Выйти из группы", "tags": ["groups"]}},
    "/groups/{groupID}/requests": {"get": {"summary": "Заявки на вступление", "tags": ["groups"]}},
    "/groups/{groupID}/requests/{requestID}/approve": {"post": {"summary": "Одобрить заявку", "tags": ["groups"]}},
    "/groups/{groupID}/requests/{requestID}/reject": {"post": {"summary": "Отклонить заявку", "tags": ["groups"]}},
    "/groups/{groupID}/members": {"get": {"summary": "Состав группы", "tags": ["groups"]}},
    "/groups/{groupID}/members/{userID}": {
      "post": {"summary": "Добавить участника", "tags": ["groups"]},
      "delete": {"summary": "Убрать участника", "tags": ["groups"]}
    },
    "/groups/{groupID}/external": {
      "get": {"summary": "Внешний состав группы", "tags": ["groups"]},
      "post": {"summary": "Добавить внешнего участника", "tags": ["groups"]}
    },
    "/groups/{groupID}/cover": {"post": {"summary": "Загрузить обложку группы", "tags": ["groups"]}},
    "/me/usage": {"get": {"summary": "Текущие счётчики и лимиты плана", "tags": ["usage"]}},
    "/ws/sessions/{sessionID}": {"get": {"summary": "WebSocket с обновлениями сессии", "tags": ["live"]}}
  }
}`

func SwaggerDoc(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(apiDoc))
}
