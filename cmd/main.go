package main

import (
	"log"

	"github.com/tran-hoang-nhan/phone-shop/cmd/server"
	"github.com/tran-hoang-nhan/phone-shop/internal/auth"
	"github.com/tran-hoang-nhan/phone-shop/internal/config"
	"github.com/tran-hoang-nhan/phone-shop/internal/storage"
)

var (
	srvAddr                 = config.Env.ServerAddr
	mongoURI                = config.Env.MongoURI
	mongoDBName             = config.Env.MongoDBName
	redisAddr               = config.Env.RedisAddr
	redisPassword           = config.Env.RedisPassword
	redisDB                 = config.Env.RedisDB
	accessTokenSecret       = config.Env.AccessTokenSecret
	accessTokenExpiryInSecs = config.Env.AccessTokenExpiryInSecs
	restockThreshold        = config.Env.RestockThreshold
)

func main() {
	log.SetFlags(log.Ldate | log.Llongfile)

	db, dbClose, err := storage.NewMongoDB(mongoURI, mongoDBName)
	if err != nil {
		log.Fatal(err)
	}

	cache, err := storage.NewRedisClient(redisAddr, redisPassword, redisDB)
	if err != nil {
		log.Fatal(err)
	}

	srv := server.NewServer(&server.ServerConfig{
		Addr:    srvAddr,
		DB:      db,
		DBClose: dbClose,
		Cache:   cache,
		TokenManager: auth.NewTokenService(
			accessTokenSecret,
			accessTokenExpiryInSecs,
		),
		RestockThreshold: restockThreshold,
	})
	srv.Run()
}
