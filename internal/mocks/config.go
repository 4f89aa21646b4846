package mocks

import "github.com/prodyhq/prody/internal/config"

func NewMockConfig() *config.Config {
	cfg := &config.Config{
		BaseURL:      "http://localhost",
		FrontendURL:  "http://localhost:3000",
		HttpPort:     8080,
		RedisServer:  "localhost:6379",
		KafkaServers: "localhost:9092",
	}
	cfg.Db.Dsn = "mock_dsn"
	cfg.Jwt.SecretKey = "test_secret"
	cfg.Google.ClientID = "test-client-id"
	cfg.Notifications.Email = ""
	cfg.Smtp.Host = "smtp.example.com"
	cfg.Smtp.Port = 587
	cfg.Smtp.From = "no-reply@example.com"

	return cfg
}
