package mocks

//go:generate mockgen -destination=persona.go -package=mocks -mock_names=Repository=MockPersonaRepository github.com/alanyang/prompt-vault/internal/port/persona Repository
//go:generate mockgen -destination=message.go -package=mocks -mock_names=Repository=MockMessageRepository github.com/alanyang/prompt-vault/internal/port/message Repository
//go:generate mockgen -destination=user.go -package=mocks -mock_names=Repository=MockUserRepository github.com/alanyang/prompt-vault/internal/port/user Repository
//go:generate mockgen -destination=auth.go -package=mocks -mock_names=Authenticator=MockAuthenticator github.com/alanyang/prompt-vault/internal/port/auth Authenticator
//go:generate mockgen -destination=cache.go -package=mocks -mock_names=UserCache=MockUserCache github.com/alanyang/prompt-vault/internal/port/cache UserCache
//go:generate mockgen -destination=eventbus.go -package=mocks -mock_names=EventBus=MockEventBus github.com/alanyang/prompt-vault/internal/port/eventbus EventBus
//go:generate mockgen -destination=idempotency.go -package=mocks -mock_names=Store=MockIdempotencyStore github.com/alanyang/prompt-vault/internal/port/idempotency Store
