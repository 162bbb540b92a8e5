package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/oj-engine/gojudge/internal/core"
	"github.com/oj-engine/gojudge/internal/pubsub"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// streamJob implements the read-only GET /jobs/{id}/stream enrichment
// (see SPEC_FULL.md's DOMAIN STACK): a websocket pushing every case-status
// transition of a running job, cached so a client that connects mid-run
// still sees everything published so far.
func (h *Handler) streamJob(c *gin.Context) {
	id, err := pathInt(c, "id")
	if err != nil {
		Fail(c, err)
		return
	}
	if _, ok := h.rs.Jobs.Get(id); !ok {
		Fail(c, core.NotFound("job %d not found", id))
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		zap.S().Errorf("failed to upgrade websocket: %v", err)
		return
	}
	defer conn.Close()

	topic := jobTopic(id)
	msgChan, unsubscribe := pubsub.GetBroker().Subscribe(topic)
	defer unsubscribe()

	clientClosed := make(chan struct{})
	go func() {
		defer close(clientClosed)
		for msg := range msgChan {
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				zap.S().Warnf("error writing to job stream websocket: %v", err)
				return
			}
		}
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				zap.S().Infof("job stream websocket unexpected close: %v", err)
			}
			break
		}
	}
	<-clientClosed
}

func jobTopic(id int) string {
	return "job:" + strconv.Itoa(id)
}

// publishJobUpdate is installed as the pipeline's UpdateFunc: it republishes
// every state change of a job onto its pubsub topic, and closes the topic
// once the job reaches a terminal state since no further messages follow.
func (h *Handler) publishJobUpdate(job *core.Job) {
	data, err := json.Marshal(job)
	if err != nil {
		zap.S().Errorf("marshal job update: %v", err)
		return
	}

	topic := jobTopic(job.ID)
	event := "update"
	if job.State == core.Finished || job.State == core.Canceled {
		event = "final"
	}
	pubsub.GetBroker().Publish(topic, pubsub.FormatJobEvent(event, data))

	if job.State == core.Finished || job.State == core.Canceled {
		pubsub.GetBroker().CloseTopic(topic)
	}
}
