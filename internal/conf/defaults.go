package conf

import (
	"github.com/spf13/viper"
)

// setDefaultConfig registers the default value for every setting so a
// missing config file still yields a runnable configuration.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	// Main
	viper.SetDefault("main.name", "fishtrack-go")
	viper.SetDefault("main.log.enabled", true)
	viper.SetDefault("main.log.path", "logs/fishtrack.log")
	viper.SetDefault("main.log.rotation", RotationDaily)
	viper.SetDefault("main.log.maxsize", 10*1024*1024)

	// Web server
	viper.SetDefault("webserver.enabled", true)
	viper.SetDefault("webserver.debug", false)
	viper.SetDefault("webserver.port", "8080")
	viper.SetDefault("webserver.log.enabled", true)
	viper.SetDefault("webserver.log.path", "logs/webui.log")
	viper.SetDefault("webserver.log.rotation", RotationDaily)
	viper.SetDefault("webserver.log.maxsize", 10*1024*1024)

	// Database output
	viper.SetDefault("output.sqlite.enabled", true)
	viper.SetDefault("output.sqlite.path", "fishing.db")
	viper.SetDefault("output.mysql.enabled", false)
	viper.SetDefault("output.mysql.username", "fishtrack")
	viper.SetDefault("output.mysql.password", "secret")
	viper.SetDefault("output.mysql.database", "fishtrack")
	viper.SetDefault("output.mysql.host", "localhost")
	viper.SetDefault("output.mysql.port", "3306")

	// Ingestion
	viper.SetDefault("ingest.censuspath", "전국어선정보.csv")

	// Track archive
	viper.SetDefault("archive.root", "vessel_routes")

	// Uploads
	viper.SetDefault("uploads.photodir", "uploads/photos")
	viper.SetDefault("uploads.filedir", "uploads/files")
}
