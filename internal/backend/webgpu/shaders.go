//go:build windows

package webgpu

// WGSL compute shaders, embedded as string constants.

// workgroupSize is the thread count per workgroup for 1D dispatches.
const workgroupSize = 256

const binaryShaderHeader = `
@group(0) @binding(0) var<storage, read> a: array<f32>;
@group(0) @binding(1) var<storage, read> b: array<f32>;
@group(0) @binding(2) var<storage, read_write> result: array<f32>;

struct Params {
    size: u32,
}
@group(0) @binding(3) var<uniform> params: Params;

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {
    let idx = global_id.x;
    if (idx < params.size) {
`

const addShader = binaryShaderHeader + `
        result[idx] = a[idx] + b[idx];
    }
}
`

const subShader = binaryShaderHeader + `
        result[idx] = a[idx] - b[idx];
    }
}
`

const mulShader = binaryShaderHeader + `
        result[idx] = a[idx] * b[idx];
    }
}
`

const divShader = binaryShaderHeader + `
        result[idx] = a[idx] / b[idx];
    }
}
`

const unaryShaderHeader = `
@group(0) @binding(0) var<storage, read> input: array<f32>;
@group(0) @binding(1) var<storage, read_write> result: array<f32>;

struct Params {
    size: u32,
}
@group(0) @binding(2) var<uniform> params: Params;

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {
    let idx = global_id.x;
    if (idx < params.size) {
`

const negShader = unaryShaderHeader + `
        result[idx] = -input[idx];
    }
}
`

const expShader = unaryShaderHeader + `
        result[idx] = exp(input[idx]);
    }
}
`

const logShader = unaryShaderHeader + `
        result[idx] = log(input[idx]);
    }
}
`

const sqrtShader = unaryShaderHeader + `
        result[idx] = sqrt(input[idx]);
    }
}
`

const tanhShader = unaryShaderHeader + `
        result[idx] = tanh(input[idx]);
    }
}
`

const sigmoidShader = unaryShaderHeader + `
        result[idx] = 1.0 / (1.0 + exp(-input[idx]));
    }
}
`

// matmulShader computes C[m,n] = sum_k A[m,k] * B[k,n], one output element
// per thread in 16x16 workgroups.
const matmulShader = `
@group(0) @binding(0) var<storage, read> a: array<f32>;
@group(0) @binding(1) var<storage, read> b: array<f32>;
@group(0) @binding(2) var<storage, read_write> result: array<f32>;

struct Params {
    m: u32,
    k: u32,
    n: u32,
}
@group(0) @binding(3) var<uniform> params: Params;

@compute @workgroup_size(16, 16)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {
    let col = global_id.x;
    let row = global_id.y;
    if (row >= params.m || col >= params.n) {
        return;
    }
    var sum = 0.0;
    for (var i = 0u; i < params.k; i = i + 1u) {
        sum = sum + a[row * params.k + i] * b[i * params.n + col];
    }
    result[row * params.n + col] = sum;
}
`
