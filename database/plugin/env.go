// Copyright 2025 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package plugin

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// EnvVarName returns the environment variable that overrides a plugin option
func EnvVarName(pluginType PluginType, pluginName string, opt PluginOption) string {
	if opt.CustomEnvVar != "" {
		return opt.CustomEnvVar
	}
	name := fmt.Sprintf(
		"LEAPFROG_DATABASE_%s_%s_%s",
		PluginTypeName(pluginType),
		pluginName,
		opt.Name,
	)
	return strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
}

// ProcessEnvVars applies plugin options set in the environment
func ProcessEnvVars() error {
	for _, entry := range pluginEntries {
		for _, opt := range entry.Options {
			envName := EnvVarName(entry.Type, entry.Name, opt)
			raw, ok := os.LookupEnv(envName)
			if !ok {
				continue
			}
			var value any
			var err error
			switch opt.Type {
			case PluginOptionTypeString:
				value = raw
			case PluginOptionTypeBool:
				value, err = strconv.ParseBool(raw)
			case PluginOptionTypeInt:
				value, err = strconv.Atoi(raw)
			case PluginOptionTypeUint:
				value, err = strconv.ParseUint(raw, 10, 64)
			default:
				err = fmt.Errorf("unknown plugin option type %d", opt.Type)
			}
			if err != nil {
				return fmt.Errorf("environment variable %s: %w", envName, err)
			}
			if err := SetPluginOption(entry.Type, entry.Name, opt.Name, value); err != nil {
				return err
			}
		}
	}
	return nil
}

// ProcessConfig applies plugin options read from a config file. The map is
// keyed by plugin type name, then plugin name, then option name.
func ProcessConfig(pluginConfig map[string]map[string]map[string]any) error {
	for typeName, plugins := range pluginConfig {
		pluginType, ok := pluginTypeByName(typeName)
		if !ok {
			return fmt.Errorf("unknown plugin type %q", typeName)
		}
		for pluginName, options := range plugins {
			for optionName, value := range options {
				if err := SetPluginOption(pluginType, pluginName, optionName, value); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func pluginTypeByName(name string) (PluginType, bool) {
	for _, pluginType := range []PluginType{PluginTypeBlob, PluginTypeMetadata} {
		if PluginTypeName(pluginType) == name {
			return pluginType, true
		}
	}
	return 0, false
}
