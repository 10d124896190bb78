//go:build !no_containers

package e2e

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/kilianp07/crewroster/app"
	"github.com/kilianp07/crewroster/config"
	"github.com/kilianp07/crewroster/core/factory"
	"github.com/kilianp07/crewroster/core/model"
	"github.com/kilianp07/crewroster/core/store"
)

const (
	influxOrg    = "e2e_org"
	influxBucket = "e2e_bucket"
	influxToken  = "e2e-token"
)

// junitReport is a minimal representation of a JUnit XML report. The E2E
// suite writes such a report so CI systems can display the results.
type junitReport struct {
	XMLName  xml.Name        `xml:"testsuite"`
	Name     string          `xml:"name,attr"`
	Tests    int             `xml:"tests,attr"`
	Failures int             `xml:"failures,attr"`
	Cases    []junitTestCase `xml:"testcase"`
}

type junitTestCase struct {
	Name    string  `xml:"name,attr"`
	Failure *string `xml:"failure,omitempty"`
	Time    float64 `xml:"time,attr"`
}

func writeJUnit(path string, rep junitReport) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	enc := xml.NewEncoder(f)
	enc.Indent("", "  ")
	return enc.Encode(rep)
}

// startInflux starts an InfluxDB 2.7 container initialised with the e2e
// organisation, bucket and token.
func startInflux(ctx context.Context, t *testing.T) string {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "influxdb:2.7",
		ExposedPorts: []string{"8086/tcp"},
		Env: map[string]string{
			"DOCKER_INFLUXDB_INIT_MODE":        "setup",
			"DOCKER_INFLUXDB_INIT_USERNAME":    "e2e",
			"DOCKER_INFLUXDB_INIT_PASSWORD":    "e2e-password",
			"DOCKER_INFLUXDB_INIT_ORG":         influxOrg,
			"DOCKER_INFLUXDB_INIT_BUCKET":      influxBucket,
			"DOCKER_INFLUXDB_INIT_ADMIN_TOKEN": influxToken,
		},
		WaitingFor: wait.ForHTTP("/health").WithPort("8086/tcp").WithStartupTimeout(60 * time.Second),
	}
	cont, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		t.Skipf("unable to start influx container: %v", err)
	}
	t.Cleanup(func() { _ = cont.Terminate(context.Background()) })
	host, _ := cont.Host(ctx)
	port, _ := cont.MappedPort(ctx, "8086")
	return fmt.Sprintf("http://%s:%s", host, port.Port())
}

func startMosquitto(ctx context.Context, t *testing.T) string {
	t.Helper()
	conf := filepath.Join(t.TempDir(), "mosquitto.conf")
	require.NoError(t, os.WriteFile(conf, []byte("listener 1883\nallow_anonymous true\n"), 0o644))
	req := tc.ContainerRequest{
		Image:        "eclipse-mosquitto:2.0",
		ExposedPorts: []string{"1883/tcp"},
		WaitingFor:   wait.ForListeningPort("1883/tcp"),
		Files: []tc.ContainerFile{{
			HostFilePath:      conf,
			ContainerFilePath: "/mosquitto/config/mosquitto.conf",
			FileMode:          0o644,
		}},
	}
	cont, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		t.Skipf("unable to start mosquitto: %v", err)
	}
	t.Cleanup(func() { _ = cont.Terminate(context.Background()) })
	host, _ := cont.Host(ctx)
	port, _ := cont.MappedPort(ctx, "1883")
	return fmt.Sprintf("tcp://%s:%s", host, port.Port())
}

// writeSeed writes a two-crew, two-flight dataset for day and returns its
// path.
func writeSeed(t *testing.T, day time.Time) string {
	t.Helper()
	flight := func(id int64, no string, hour int) model.Flight {
		dep := day.Add(time.Duration(hour) * time.Hour)
		return model.Flight{ID: id, FlightNo: no, Date: day, DepIATA: "DEL", ArrIATA: "BOM",
			SchedDep: dep, SchedArr: dep.Add(2 * time.Hour), AircraftCode: "A320"}
	}
	ds := store.Dataset{
		Crew: []model.Crew{
			{ID: 1, Name: "Asha", Rank: model.RankCaptain, BaseIATA: "DEL", Status: model.CrewActive},
			{ID: 2, Name: "Ravi", Rank: model.RankFirstOfficer, BaseIATA: "DEL", Status: model.CrewActive},
		},
		Flights: []model.Flight{flight(1, "AI101", 6), flight(2, "AI102", 7)},
		Qualifications: []model.Qualification{
			{CrewID: 1, AircraftCode: "A320", QualifiedOn: day.AddDate(-1, 0, 0)},
			{CrewID: 2, AircraftCode: "A320", QualifiedOn: day.AddDate(-1, 0, 0)},
		},
	}
	b, err := json.Marshal(ds)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, os.WriteFile(path, b, 0o644))
	return path
}

// Test_E2E_RosterFlow generates a roster with the Influx sink and MQTT
// notifications enabled, then checks both ends received the run.
func Test_E2E_RosterFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("container test")
	}
	if _, err := exec.LookPath("docker"); err != nil {
		t.Skipf("docker not installed: %v", err)
	}
	started := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	influxURL := startInflux(ctx, t)
	broker := startMosquitto(ctx, t)
	t.Logf("InfluxDB started at %s, Mosquitto at %s", influxURL, broker)

	received := make(chan paho.Message, 4)
	sub := paho.NewClient(paho.NewClientOptions().AddBroker(broker).SetClientID("e2e-listener"))
	tok := sub.Connect()
	require.True(t, tok.WaitTimeout(10*time.Second))
	require.NoError(t, tok.Error())
	defer sub.Disconnect(100)
	tok = sub.Subscribe("crewroster/#", 1, func(_ paho.Client, m paho.Message) { received <- m })
	require.True(t, tok.WaitTimeout(10*time.Second))
	require.NoError(t, tok.Error())

	day := model.Day(time.Now()).AddDate(0, 0, 1)
	cfg := config.Default()
	cfg.Database.Driver = "memory"
	cfg.Database.Seed = writeSeed(t, day)
	cfg.Metrics.Sinks = []factory.ModuleConfig{{Type: "influx", Conf: map[string]any{
		"url": influxURL, "token": influxToken, "org": influxOrg, "bucket": influxBucket,
	}}}
	cfg.Notify.Enabled = true
	cfg.Notify.MQTT.Broker = broker
	cfg.Notify.MQTT.QoS = 1
	require.NoError(t, cfg.Validate())

	svc, err := app.NewFromConfig(ctx, cfg)
	require.NoError(t, err)
	run, err := svc.GenerateRoster(ctx, day, day, "", "")
	require.NoError(t, err)
	assert.Equal(t, 2, run.KPIs.FlightsTotal)
	assert.Equal(t, 2, run.KPIs.FlightsAssigned, "overlapping flights go to different crew")
	require.NoError(t, svc.Close())

	select {
	case m := <-received:
		assert.Equal(t, "crewroster/roster/generated", m.Topic())
		assert.Contains(t, string(m.Payload()), run.RunID)
	case <-ctx.Done():
		require.FailNow(t, "roster notification not received")
	}

	reader := NewInfluxReader(influxURL, influxOrg, influxBucket, influxToken)
	defer reader.Close()
	n, err := reader.Count(ctx, "roster_run", "10m", "run_id", run.RunID)
	require.NoError(t, err)
	assert.Positive(t, n, "roster_run point written")

	rep := junitReport{Name: "e2e", Tests: 1, Cases: []junitTestCase{{Name: t.Name(), Time: time.Since(started).Seconds()}}}
	if err := writeJUnit(filepath.Join(t.TempDir(), "e2e.xml"), rep); err != nil {
		t.Logf("write junit: %v", err)
	}
}
