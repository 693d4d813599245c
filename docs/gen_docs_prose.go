// Copyright (c) Kroft contributors. All rights reserved.
// Licensed under the MIT License.

//go:build ignore

// gen_docs_prose.go contains prose constants used by gen_docs.go to build the
// reference pages. Separated to keep gen_docs.go focused on logic.
package main

// bt is a single backtick helper for embedding in raw strings.
const bt = "`"

// cbt is the triple-backtick code-block marker.
const cbt = bt + bt + bt

// cliFrontmatter is the YAML frontmatter for the CLI reference page.
const cliFrontmatter = `---
title: CLI Reference
description: Complete reference for every kroft command and its flags, generated from the source.
---`

// cliIntroProse introduces the CLI reference.
const cliIntroProse = `Kroft is driven by a single binary with one subcommand per lifecycle stage. Every command reads ` + bt + `kroft.yaml` + bt + ` from the working directory unless noted otherwise, and all output-producing commands accept the global ` + bt + `--timing` + bt + ` flag to append per-activity timing to success messages.

This page is generated from the command definitions. Do not edit it by hand; run ` + bt + `go generate ./docs/...` + bt + ` instead.`

// configFrontmatter is the YAML frontmatter for the configuration reference page.
const configFrontmatter = `---
title: Declarative Configuration
description: Complete reference for kroft.yaml - the project-level configuration file that defines your homelab cluster's desired state.
---`

// configIntroProse introduces the configuration file.
const configIntroProse = `Kroft uses declarative YAML configuration files for reproducible homelab setup. This page describes ` + bt + `kroft.yaml` + bt + `, the project-level configuration file that defines your cluster's desired state.

## What is kroft.yaml?

Each kroft project includes a ` + bt + `kroft.yaml` + bt + ` file describing the physical cluster and its workloads. Run ` + bt + `kroft init` + bt + ` to generate this file, which can be committed to version control and shared with your team.

The configuration file uses the ` + bt + `kroft.dev/v1alpha1` + bt + ` API version and follows the ` + bt + `Cluster` + bt + ` kind schema. A JSON schema for editor validation lives at ` + bt + `schemas/kroft-config.schema.json` + bt + ` and is regenerated with ` + bt + `go run schemas/gen_schema.go` + bt + `.`

// configSpecProse documents the top-level spec fields.
const configSpecProse = `## Top-level fields

` + cbt + `yaml
apiVersion: kroft.dev/v1alpha1
kind: Cluster
spec:
  name: homelab
` + cbt + `

| Field | Default | Description |
| --- | --- | --- |
| ` + bt + `spec.name` + bt + ` | ` + bt + `homelab` + bt + ` | Cluster name, used for the kubeconfig context and as the K3s cluster identity. |
| ` + bt + `spec.connection.kubeconfig` + bt + ` | ` + bt + `~/.kube/config` + bt + ` | Kubeconfig file commands read and write. |
| ` + bt + `spec.connection.context` + bt + ` | derived from name | Kubeconfig context to use when talking to the cluster. |
| ` + bt + `spec.connection.timeout` + bt + ` | ` + bt + `5m` + bt + ` | Upper bound for readiness checks during bootstrap and status. |
| ` + bt + `spec.ssh.user` + bt + ` | ` + bt + `pi` + bt + ` | SSH user for node access. |
| ` + bt + `spec.ssh.port` + bt + ` | ` + bt + `22` + bt + ` | SSH port for node access. |
| ` + bt + `spec.ssh.identityFile` + bt + ` | ` + bt + `~/.ssh/id_ed25519` + bt + ` | Private key used for node SSH sessions. |`

// configNodesProse documents node and network configuration.
const configNodesProse = `## Nodes and networking

Nodes are the physical machines the cluster runs on. Exactly one node carries the ` + bt + `master` + bt + ` role; the rest join as ` + bt + `worker` + bt + ` agents.

` + cbt + `yaml
spec:
  nodes:
    - name: pi-master
      address: 192.168.1.10
      role: master
    - name: pi-worker-1
      address: 192.168.1.11
      role: worker
  network:
    interface: eth0
    cidrPrefix: 24
    gateway: 192.168.1.1
    nameservers: [192.168.1.1, 1.1.1.1]
` + cbt + `

` + bt + `kroft node prepare` + bt + ` renders cloud-init artifacts for every node into ` + bt + `spec.cloudInit.outputDir` + bt + ` (default ` + bt + `cloud-init` + bt + `), applying the timezone, locale, authorized keys, and extra packages configured under ` + bt + `spec.cloudInit` + bt + `.`

// configK3sProse documents the K3s installation options.
const configK3sProse = `## K3s

` + cbt + `yaml
spec:
  k3s:
    channel: stable
    disable: [traefik, servicelb]
    serverArgs: ["--tls-san=k3s.example.lan"]
` + cbt + `

| Field | Default | Description |
| --- | --- | --- |
| ` + bt + `spec.k3s.channel` + bt + ` | ` + bt + `stable` + bt + ` | get.k3s.io release channel: ` + bt + `stable` + bt + `, ` + bt + `latest` + bt + `, or ` + bt + `testing` + bt + `. |
| ` + bt + `spec.k3s.version` + bt + ` | channel resolved | Pin an exact K3s version instead of tracking the channel. |
| ` + bt + `spec.k3s.disable` + bt + ` | none | Packaged components to disable on the server. |
| ` + bt + `spec.k3s.serverArgs` + bt + ` | none | Extra arguments for the K3s server on the master node. |
| ` + bt + `spec.k3s.agentArgs` + bt + ` | none | Extra arguments for K3s agents on worker nodes. |
| ` + bt + `spec.k3s.tokenFile` + bt + ` | generated | File holding the cluster join token. ` + bt + `KROFT_K3S_TOKEN` + bt + ` takes precedence. |`

// configPlatformProse documents the platform components installed on top of K3s.
const configPlatformProse = `## Platform components

After K3s is up, ` + bt + `kroft cluster bootstrap` + bt + ` installs cert-manager, Rancher, and Fleet in order, honoring the enable switches and versions configured here.

` + cbt + `yaml
spec:
  certManager:
    enabled: true
  rancher:
    enabled: true
    hostname: rancher.homelab.lan
    replicas: 1
  fleet:
    repoURL: https://github.com/example/homelab-fleet
    branch: main
    paths: [clusters/homelab]
` + cbt + `

The Rancher bootstrap password is read from ` + bt + `spec.rancher.bootstrapPasswordFile` + bt + `, with the ` + bt + `KROFT_RANCHER_BOOTSTRAP_PASSWORD` + bt + ` environment variable taking precedence. Fleet is pointed at the GitOps repository in ` + bt + `spec.fleet` + bt + ` and reconciles the listed paths into the cluster.`

// configDevProse documents the local development cluster options.
const configDevProse = `## Development clusters

` + bt + `kroft dev` + bt + ` runs a disposable local cluster in Docker for iterating on workloads before they reach the physical cluster.

` + cbt + `yaml
spec:
  dev:
    distribution: K3d
    name: kroft-dev
    portMappings: ["8080:80"]
` + cbt + `

| Field | Default | Description |
| --- | --- | --- |
| ` + bt + `spec.dev.distribution` + bt + ` | ` + bt + `Kind` + bt + ` | Local cluster tool: ` + bt + `Kind` + bt + ` or ` + bt + `K3d` + bt + `. K3d matches the K3s distribution the physical cluster runs. |
| ` + bt + `spec.dev.name` + bt + ` | ` + bt + `kroft-dev` + bt + ` | Name of the dev cluster and its kubeconfig context suffix. |
| ` + bt + `spec.dev.portMappings` + bt + ` | none | Host ports forwarded into the dev cluster, Docker syntax. |

Workloads in ` + bt + `spec.workload.sourceDirectory` + bt + ` (default ` + bt + `k8s` + bt + `) apply to whichever cluster the current kubeconfig context points at, so the same ` + bt + `kroft workload apply` + bt + ` works against dev and physical clusters.`

// configSecretsProse documents secrets handling.
const configSecretsProse = `## Secrets

Secrets files live next to the other manifests and are encrypted with SOPS and age before they are committed. ` + bt + `kroft init --age-recipient` + bt + ` scaffolds a ` + bt + `.sops.yaml` + bt + ` whose creation rule limits encryption to Kubernetes Secret payload fields, and ` + bt + `kroft cipher` + bt + ` wraps encrypt, decrypt, keygen, and key import so plain ` + bt + `sops` + bt + ` and kroft stay interchangeable on the same files.`
