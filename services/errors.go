package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ресурс не найден (универсальная)
	ErrNotFound = errors.New("requested resource not found")

	// Ошибки валидации и бизнес-правил
	ErrValidationFailed    = errors.New("validation failed")
	ErrPasswordTooShort    = errors.New("password is too short")
	ErrSessionNotJoinable  = errors.New("session is not joinable")
	ErrSessionFull         = errors.New("session is full")
	ErrSessionNotLeavable  = errors.New("session can no longer be left")
	ErrNotParticipant      = errors.New("user is not a participant of this session")
	ErrCreatorCannotLeave  = errors.New("session creator cannot leave own session")
	ErrSessionNotTeamMode  = errors.New("session format does not use teams")
	ErrSessionNotFinished  = errors.New("session has not finished yet")
	ErrSessionTerminal     = errors.New("session is already in a terminal state")
	ErrAlreadyActiveMember = errors.New("user is already an active member of the group")
	ErrOwnerCannotLeave    = errors.New("group owner cannot leave own group")
	ErrOwnerImmutable      = errors.New("group owner membership cannot be changed")
	ErrMemberBanned        = errors.New("user is banned from the group")

	// Квоты и планы
	ErrQuotaExceeded      = errors.New("monthly quota exceeded for this plan")
	ErrCapabilityDisabled = errors.New("plan does not allow this action")

	// Ошибки конфликтов
	ErrUserEmailConflict = errors.New("email address is already in use")
	ErrGroupNameConflict = errors.New("group name is already in use")

	// Ошибки аутентификации и авторизации
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrForbiddenOperation  = errors.New("operation not allowed for the current user")
	ErrGroupInvitationOnly = errors.New("group can be joined by invitation only")
	ErrCreationPolicy      = errors.New("group creation is not allowed by current policy")

	// Ошибки, специфичные для сущностей
	ErrUserNotFound        = errors.New("user not found")
	ErrSportNotFound       = errors.New("sport not found")
	ErrGroupNotFound       = errors.New("group not found")
	ErrSessionNotFound     = errors.New("session not found")
	ErrTeamNotFound        = errors.New("team not found")
	ErrMemberNotFound      = errors.New("group member not found")
	ErrJoinRequestNotFound = errors.New("join request not found")
	ErrAttendeeNotFound    = errors.New("attendee not found")
)
