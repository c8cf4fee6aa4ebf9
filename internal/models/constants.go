package models

const (
	// UserIDHeader carries the id of the calling user on every API request.
	UserIDHeader = "X-Sharer-User-Id"

	// DefaultRequestsPageSize размер страницы списка запросов, если size не передан
	DefaultRequestsPageSize = 10

	// RateLimitRequests количество запросов пользователя в окне
	RateLimitRequests = 120

	// RateLimitWindow окно ограничения частоты запросов
	RateLimitWindow = 60 // 1 минута в секундах

	// DefaultBackupRetentionDays сколько дней хранить резервные копии БД
	DefaultBackupRetentionDays = 7
)
