package http

import (
	"strconv"

	"github.com/dkeye/Huddle/internal/domain"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

func itoa(id domain.RoomID) string { return strconv.FormatInt(int64(id), 10) }

func sessionsForTest() gin.HandlerFunc {
	return sessions.Sessions(sessionName, cookie.NewStore([]byte("test")))
}
