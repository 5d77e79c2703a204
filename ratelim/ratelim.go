package ratelim

import (
	"net"
	"net/http"
	"sync"
	"time"

	"eventra/utils"

	"github.com/julienschmidt/httprouter"
	"golang.org/x/time/rate"
)

var (
	mu       sync.Mutex
	visitors = make(map[string]*visitor)

	limit = rate.Limit(5)
	burst = 10
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func Init(requestsPerSecond float64, b int) {
	limit = rate.Limit(requestsPerSecond)
	burst = b
	go cleanupVisitors()
}

func getVisitor(ip string) *rate.Limiter {
	mu.Lock()
	defer mu.Unlock()

	v, exists := visitors[ip]
	if !exists {
		limiter := rate.NewLimiter(limit, burst)
		visitors[ip] = &visitor{limiter: limiter, lastSeen: time.Now()}
		return limiter
	}
	v.lastSeen = time.Now()
	return v.limiter
}

func cleanupVisitors() {
	for {
		time.Sleep(time.Minute)
		mu.Lock()
		for ip, v := range visitors {
			if time.Since(v.lastSeen) > 3*time.Minute {
				delete(visitors, ip)
			}
		}
		mu.Unlock()
	}
}

func RateLimit(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}
		if !getVisitor(ip).Allow() {
			utils.SendResponse(w, http.StatusTooManyRequests, "Too many requests", nil)
			return
		}
		next(w, r, ps)
	}
}
