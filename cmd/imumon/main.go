package main

import (
	"flag"
	"log"
	"os"

	"github.com/robotalks/imu.go/pkg/report"
	"github.com/robotalks/imu.go/pkg/report/mqtt"
	"github.com/robotalks/imu.go/pkg/report/pb"
)

var (
	mqttURL = mqtt.DefaultURL
)

func init() {
	if val := os.Getenv("IMU_MQTT_URL"); val != "" {
		mqttURL = val
	}
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	q, err := mqtt.NewQueueFromURL(mqttURL)
	if err != nil {
		log.Fatalln(err)
	}
	mqtt.SubReports(q, func(source string, m *pb.Report) {
		log.Printf("%s[%s]: %s", source, m.Session, report.FormatProto(m))
	})
	if err := q.Connect(); err != nil {
		log.Fatalln(err)
	}
	<-(chan struct{})(nil)
}
