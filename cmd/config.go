package cmd

type Config struct {
	HTTPPort         string
	DBHost           string
	DBPort           string
	DBUser           string
	DBPassword       string
	DBName           string
	DBSslMode        string
	TrackAPIURL      string
	TrackAPIUser     string
	TrackAPIPass     string
	TrackAPILicense  string
	TrackAPITraining string
}
