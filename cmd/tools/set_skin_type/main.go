package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/kapu/skincheck-go/internal/config"
	"github.com/kapu/skincheck-go/internal/constants"
	"github.com/kapu/skincheck-go/internal/domain"
	"github.com/kapu/skincheck-go/internal/service/cache"
	"github.com/kapu/skincheck-go/internal/service/preference"
)

var (
	skin         = flag.String("skin", "", "comma-separated skin types, e.g. 건성,민감성")
	show         = flag.Bool("show", false, "print the stored profile instead of writing")
	clearProfile = flag.Bool("clear", false, "delete the stored profile")
)

func main() {
	flag.Parse()

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), constants.RedisConfig.ReadyTimeout*2)
	defer cancel()

	store, err := cache.NewCacheService(ctx, cache.RedisConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, logger)
	if err != nil {
		logger.Fatal("failed to connect to Redis", zap.Error(err))
	}
	defer store.Close()

	if err := store.WaitUntilReady(ctx, constants.RedisConfig.ReadyTimeout); err != nil {
		logger.Fatal("Redis not ready", zap.Error(err))
	}

	profiles := preference.NewRedisStore(store, cfg.Redis.ProfileKey, nil, logger)

	switch {
	case *clearProfile:
		if err := store.Del(ctx, cfg.Redis.ProfileKey); err != nil {
			logger.Fatal("failed to clear profile", zap.Error(err))
		}
		logger.Info("Profile cleared", zap.String("key", cfg.Redis.ProfileKey))

	case *show:
		profile, err := profiles.CurrentProfile(ctx)
		if err != nil {
			logger.Fatal("failed to read profile", zap.Error(err))
		}
		fmt.Println(strings.Join(profile.Labels(), ", "))

	default:
		profile := domain.ParseSkinTypeProfile(strings.Split(*skin, ","))
		if len(profile) == 0 {
			fmt.Fprintln(os.Stderr, "no valid skin type given; choose from 건성, 지성, 복합성, 민감성, 여드름성, 중성")
			os.Exit(2)
		}
		if err := profiles.Save(ctx, profile); err != nil {
			logger.Fatal("failed to save profile", zap.Error(err))
		}
		logger.Info("Profile saved",
			zap.String("key", cfg.Redis.ProfileKey),
			zap.String("profile", profile.String()),
		)
	}
}
