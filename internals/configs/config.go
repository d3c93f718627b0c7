package configs

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

var (
	JWTSecret string

	// Payment gateways
	OmisePublicKey    string
	OmiseSecretKey    string
	MidtransServerKey string
	MidtransUseProd   bool

	// Base URL publik (dipakai untuk return/notification URL gateway)
	AppBaseURL string
	WebBaseURL string
)

/* =======================
   ENV LOADER
======================= */

func LoadEnv() {
	if os.Getenv("RAILWAY_ENVIRONMENT") == "" {
		if err := godotenv.Load(); err != nil {
			log.Println("⚠️ Tidak menemukan .env file, menggunakan ENV dari sistem")
		} else {
			log.Println("✅ .env file berhasil dimuat!")
		}
	} else {
		log.Println("🚀 Running in Railway, menggunakan ENV dari sistem")
	}

	JWTSecret = GetEnv("JWT_SECRET")
	OmisePublicKey = GetEnv("OMISE_PUBLIC_KEY")
	OmiseSecretKey = GetEnv("OMISE_SECRET_KEY")
	MidtransServerKey = GetEnv("MIDTRANS_SERVER_KEY")
	MidtransUseProd = os.Getenv("MIDTRANS_USE_PROD") == "true"

	AppBaseURL = GetEnvDefault("APP_BASE_URL", "http://localhost:3000")
	WebBaseURL = GetEnvDefault("WEB_BASE_URL", "http://localhost:5173")

	if JWTSecret == "" {
		log.Println("❌ JWT_SECRET belum diset!")
	} else {
		log.Println("✅ JWT_SECRET berhasil dimuat.")
	}
	if OmiseSecretKey == "" {
		log.Println("❌ OMISE_SECRET_KEY belum diset!")
	} else {
		log.Println("✅ OMISE_SECRET_KEY berhasil dimuat.")
	}
	if MidtransServerKey == "" {
		log.Println("❌ MIDTRANS_SERVER_KEY belum diset!")
	} else {
		log.Println("✅ MIDTRANS_SERVER_KEY berhasil dimuat.")
	}
}

func GetEnv(key string) string {
	return os.Getenv(key)
}

func GetEnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
