package main

type Config struct {
	Store struct {
		Path        string `json:"path"`
		Retention   uint   `json:"retention"`
		StartHeight uint   `json:"startHeight"`
	} `json:"store"`
	BitcoinRPC struct {
		Host     string `json:"host"`
		Username string `json:"username"`
		Password string `json:"password"`
	} `json:"bitcoinRPC"`
	Database struct {
		Host     string `json:"host"`
		User     string `json:"user"`
		Password string `json:"password"`
		DBname   string `json:"dbname"`
		Port     string `json:"port"`
	} `json:"database"`
	Report struct {
		Method  string `json:"method"`
		Timeout int    `json:"timeout"`
		S3      struct {
			Bucket    string `json:"bucket"`
			Region    string `json:"region"`
			AccessKey string `json:"accessKey"`
			SecretKey string `json:"secretKey"`
		} `json:"s3"`
	} `json:"report"`
	Service struct {
		URL  string `json:"url"`
		Name string `json:"name"`
		Addr string `json:"addr"`
	} `json:"service"`
}

var GlobalConfig Config
