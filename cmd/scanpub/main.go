// scanpub publica escaneos de prueba en el canal push configurado (PUSH_DRIVER redis o amqp)
// para ver el dashboard actualizarse sin el backend.
//
// Uso: go run ./cmd/scanpub [receiving|shipping] [cantidad] [barcode]
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/jhoicas/Inventario-dashboard/internal/application/ports"
	"github.com/jhoicas/Inventario-dashboard/internal/domain/entity"
	"github.com/jhoicas/Inventario-dashboard/internal/infrastructure/push"
	"github.com/jhoicas/Inventario-dashboard/pkg/config"
	"github.com/jhoicas/Inventario-dashboard/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	kind := entity.EventReceiving
	if len(os.Args) > 1 {
		k, err := entity.ParseEventKind(os.Args[1])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Tipo: %v\n", err)
			os.Exit(2)
		}
		kind = k
	}
	qty := int64(1)
	if len(os.Args) > 2 {
		n, err := strconv.ParseInt(os.Args[2], 10, 64)
		if err != nil || n <= 0 {
			fmt.Fprintf(os.Stderr, "Cantidad inválida %q\n", os.Args[2])
			os.Exit(2)
		}
		qty = n
	}
	barcode := "SCANPUB-" + strconv.FormatInt(time.Now().Unix(), 10)
	if len(os.Args) > 3 {
		barcode = os.Args[3]
	}

	var ch ports.PushChannel
	switch cfg.Push.Driver {
	case config.PushDriverRedis:
		ch = push.NewRedis(push.RedisOptions{
			Addr:              cfg.Push.RedisAddr,
			Password:          cfg.Push.RedisPassword,
			DB:                cfg.Push.RedisDB,
			ReconnectAttempts: cfg.Push.ReconnectAttempts,
			ReconnectDelay:    cfg.Push.ReconnectDelay,
		}, log)
	case config.PushDriverAMQP:
		ch = push.NewAMQP(push.AMQPOptions{
			URL:               cfg.Push.AMQPURL,
			Exchange:          cfg.Push.AMQPExchange,
			ReconnectAttempts: cfg.Push.ReconnectAttempts,
			ReconnectDelay:    cfg.Push.ReconnectDelay,
		}, log)
	default:
		fmt.Fprintf(os.Stderr, "PUSH_DRIVER %q no es un broker; use redis o amqp\n", cfg.Push.Driver)
		os.Exit(2)
	}
	defer ch.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := ch.Connect(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Conectar: %v\n", err)
		os.Exit(1)
	}
	ev := entity.LiveUpdateEvent{
		Kind:      kind,
		Barcode:   barcode,
		Quantity:  qty,
		Username:  "scanpub",
		Timestamp: time.Now(),
		RecordID:  time.Now().UnixNano(),
	}
	if err := ch.Publish(ctx, cfg.Push.Topic, ev); err != nil {
		fmt.Fprintf(os.Stderr, "Publicar: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("publicado %s x%d (%s) en %s\n", kind, qty, barcode, cfg.Push.Topic)
}
