package config

import (
	"fmt"
	"os"
)

// Template returns the commented default config file contents.
func Template() string {
	return siteTemplate
}

func WriteTemplate(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(siteTemplate), 0o600)
}

const siteTemplate = `[site]
title = "Halewell"
base_url = "http://localhost:8080/"
addr = ":8080"
cors_origins = ["http://localhost:3000"]
# Bearer token for the /admin API. Empty disables all admin routes.
admin_token = ""
page_size = 6
media_dir = "local/media"
author = "Halewell"

[db]
path = "local/halewell.db"

[mail]
enabled = false
host = "smtp.example.com"
port = 587
username = ""
password = ""
from = "site@example.com"
# Recipient for contact-form relays and generation run reports.
admin_to = "admin@example.com"

[generate]
timezone = "Europe/London"
daily_cron = "0 7 * * *"
report_cron = "0 8 * * 1"
count = 1
recent_days = 30
similarity_threshold = 0.4
publish = true
`
