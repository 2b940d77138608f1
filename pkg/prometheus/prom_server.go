/*
 * Copyright (C) 2022 IBM, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 *
 */

package prometheus

import (
	"fmt"
	"net/http"

	"github.com/effluentwatch/discharge-pipeline/pkg/config"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

// InitializePrometheus starts the metrics server. Returns nil when the server
// is disabled (port 0).
func InitializePrometheus(settings *config.MetricsSettings) *http.Server {
	if settings.Port == 0 {
		log.Info("metrics server disabled (port = 0)")
		return nil
	}
	addr := fmt.Sprintf("%s:%v", settings.Address, settings.Port)
	log.Infof("startServer: addr = %s", addr)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{
		Addr:    addr,
		Handler: mux,
	}
	go func() {
		err := server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			if settings.NoPanic {
				log.Errorf("error in http.ListenAndServe: %v", err)
			} else {
				log.Panicf("error in http.ListenAndServe: %v", err)
			}
		}
	}()
	return server
}
