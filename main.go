package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"

	"github.com/sljivkov/pythsui/client"
	"github.com/sljivkov/pythsui/config"
	"github.com/sljivkov/pythsui/domain"
	"github.com/sljivkov/pythsui/logger"
	"github.com/sljivkov/pythsui/ptb"
	"github.com/sljivkov/pythsui/rpc"
)

func main() {
	log := logger.NewSublogger("main")

	// load environment variables, a missing .env is fine outside dev
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Fatal("failed to load .env")
	}

	cfg, err := config.NewConfig()
	if err != nil {
		log.WithError(err).Fatal("failed to process config")
	}

	if err := logger.Configure(cfg.LogLevel); err != nil {
		log.WithError(err).Fatal("failed to configure logging")
	}

	blobs, err := cfg.UpdateBlobs()
	if err != nil {
		log.WithError(err).Fatal("failed to decode update data")
	}

	reader := rpc.NewClient(cfg.RpcUrl, cfg.RequestTimeout)
	pyth := client.New(reader, domain.ObjectID(cfg.PythStateID), domain.ObjectID(cfg.WormholeStateID))

	ctx := context.Background()
	builder := ptb.New()

	infoIDs, err := pyth.UpdatePriceFeeds(ctx, builder, blobs, cfg.FeedIDList())
	if err != nil {
		log.WithError(err).Fatal("failed to assemble price feed update")
	}

	for i, id := range infoIDs {
		log.WithField("feed", cfg.FeedIDList()[i]).WithField("object", id).Info("Feed update assembled")
	}

	// The assembled sequence is handed to the surrounding application for
	// signing and submission; here we only report it.
	for i, cmd := range builder.Commands() {
		entry := log.WithField("index", i)

		switch cmd.Kind {
		case ptb.CommandMoveCall:
			entry.WithField("target", cmd.Target).Info("call")
		case ptb.CommandSplitCoins:
			entry.WithField("fragments", len(cmd.Amounts)).Info("split fee coins")
		case ptb.CommandMakeMoveVec:
			entry.WithField("elements", len(cmd.Args)).Info("assemble vector")
		}
	}
}
