package domain

import "errors"

// Таксономия ошибок уровня домена. Транспортный слой маппит их на
// HTTP-статусы, не заглядывая во внутренности нижних пакетов.
var (
	// ErrInvalidURL — ошибка пользовательского ввода (400, без ретраев).
	ErrInvalidURL = errors.New("invalid url: hostname must contain a dot")

	// ErrNotFound — отчета с таким ID нет. Отличается от недоступности
	// стора: UI уводит на создание отчета, а не предлагает повторить.
	ErrNotFound = errors.New("report not found")

	// ErrStoreUnavailable — транзиентный сбой хранилища (500, можно повторить).
	ErrStoreUnavailable = errors.New("report store unavailable")

	// ErrQuotaExceeded — месячный лимит аудитов тарифа исчерпан.
	ErrQuotaExceeded = errors.New("audit quota exceeded for current plan")
)
