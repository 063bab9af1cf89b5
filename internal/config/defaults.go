package config

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: Server{Addr: ":5000"},
		Storage: Storage{
			Backend:    "json",
			DBPath:     "data/lostfound.sqlite3",
			ItemsFile:  "data/items.json",
			UploadsDir: "data/uploads",
		},
		Auth: Auth{AdminEmail: "admin@lostfound.local"},
		Email: Email{
			SMTPHost:       "smtp.gmail.com",
			SMTPPort:       465,
			TimeoutSeconds: 10,
		},
		Redis: Redis{TTLSeconds: 300},
	}
}
