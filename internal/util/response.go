package util

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// error codes carried in the "code" field of error bodies
const (
	CodeInvalidParam  = 40001
	CodeAlreadyExists = 40002
	CodeInsufficient  = 40003
	CodeAuth          = 40101
	CodeForbidden     = 40301
	CodeNotFound      = 40401
	CodeServerErr     = 50001
)

// Success writes data as the response body with 200.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Created writes data with 201.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// Message writes {"message": msg} with 200.
func Message(c *gin.Context, msg string) {
	c.JSON(http.StatusOK, gin.H{"message": msg})
}

// Error writes the error body {"code", "message"}.
func Error(c *gin.Context, httpStatus int, code int, msg string) {
	c.JSON(httpStatus, gin.H{
		"code":    code,
		"message": msg,
	})
}

// Abort is Error followed by c.Abort, for middleware.
func Abort(c *gin.Context, httpStatus int, code int, msg string) {
	Error(c, httpStatus, code, msg)
	c.Abort()
}
